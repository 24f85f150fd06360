package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pontus/pontus/internal/model"
)

// ErrBindingNotFound indicates no binding exists for a tag.
var ErrBindingNotFound = errors.New("tag binding not found")

// UpsertBinding creates the binding for a tag or re-owns an existing
// one. The write is idempotent: repeating it leaves the same binding.
func (r *Repository) UpsertBinding(ctx context.Context, uid string, personID int64) (*model.TagBinding, error) {
	query := `
		INSERT INTO tag_bindings (uid, person_id)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET
			person_id = EXCLUDED.person_id,
			updated_at = NOW()
		RETURNING uid, person_id, created_at, updated_at
	`

	var binding model.TagBinding
	err := r.pool.QueryRow(ctx, query, uid, personID).Scan(
		&binding.UID,
		&binding.PersonID,
		&binding.CreatedAt,
		&binding.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert binding: %w", err)
	}

	return &binding, nil
}

// DeleteBinding removes the binding for a tag.
// Returns ErrBindingNotFound if the tag has no binding.
func (r *Repository) DeleteBinding(ctx context.Context, uid string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tag_bindings WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrBindingNotFound
	}
	return nil
}

// GetBinding retrieves the binding for a tag.
func (r *Repository) GetBinding(ctx context.Context, uid string) (*model.TagBinding, error) {
	query := `
		SELECT uid, person_id, created_at, updated_at
		FROM tag_bindings
		WHERE uid = $1
	`

	var binding model.TagBinding
	err := r.pool.QueryRow(ctx, query, uid).Scan(
		&binding.UID,
		&binding.PersonID,
		&binding.CreatedAt,
		&binding.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBindingNotFound
		}
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	return &binding, nil
}

// ResolveTagOwner returns the current owner of a tag in one indexed
// lookup, or nil when the binding exists without an owner.
// Returns ErrBindingNotFound when the tag is entirely unknown.
func (r *Repository) ResolveTagOwner(ctx context.Context, uid string) (*model.Person, error) {
	query := `
		SELECT p.id, p.name, p.email, p.password_hash, p.role, p.created_at
		FROM tag_bindings b
		LEFT JOIN persons p ON p.id = b.person_id
		WHERE b.uid = $1
	`

	var id *int64
	var name, email, passwordHash, role *string
	var createdAt *time.Time
	row := r.pool.QueryRow(ctx, query, uid)
	if err := row.Scan(&id, &name, &email, &passwordHash, &role, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBindingNotFound
		}
		return nil, fmt.Errorf("failed to resolve tag owner: %w", err)
	}

	if id == nil {
		return nil, nil
	}

	person := &model.Person{
		ID:           *id,
		Name:         deref(name),
		Email:        deref(email),
		PasswordHash: deref(passwordHash),
		Role:         model.ParseRole(deref(role)),
	}
	if createdAt != nil {
		person.CreatedAt = *createdAt
	}
	return person, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
