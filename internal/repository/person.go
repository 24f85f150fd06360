package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pontus/pontus/internal/model"
)

// Common errors for person repository operations.
var (
	ErrPersonNotFound = errors.New("person not found")
	ErrEmailExists    = errors.New("email already exists")
)

// CreatePerson inserts a new person and fills in the assigned id and
// creation time.
func (r *Repository) CreatePerson(ctx context.Context, person *model.Person) error {
	query := `
		INSERT INTO persons (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		person.Name,
		person.Email,
		person.PasswordHash,
		string(person.Role),
	).Scan(&person.ID, &person.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetPersonByID retrieves a person by their ID.
func (r *Repository) GetPersonByID(ctx context.Context, id int64) (*model.Person, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM persons
		WHERE id = $1
	`

	return r.scanPerson(r.pool.QueryRow(ctx, query, id))
}

// GetPersonByEmail retrieves a person by their email address.
// The returned record includes the credential hash for login checks.
func (r *Repository) GetPersonByEmail(ctx context.Context, email string) (*model.Person, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM persons
		WHERE email = $1
	`

	return r.scanPerson(r.pool.QueryRow(ctx, query, email))
}

// ListPersons returns all persons ordered by id.
func (r *Repository) ListPersons(ctx context.Context) ([]*model.Person, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM persons
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		var p model.Person
		var role string
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.Role = model.Role(role)
		persons = append(persons, &p)
	}

	return persons, rows.Err()
}

func (r *Repository) scanPerson(row pgx.Row) (*model.Person, error) {
	var p model.Person
	var role string
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	p.Role = model.Role(role)
	return &p, nil
}

// isUniqueViolation checks for a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
