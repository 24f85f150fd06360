package service

import (
	"context"
	"errors"

	"github.com/pontus/pontus/internal/metrics"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/repository"
)

// DirectoryStore is the persistence contract the directory needs.
// *repository.Repository satisfies it; implementations return the
// repository sentinel errors for missing records.
type DirectoryStore interface {
	UpsertBinding(ctx context.Context, uid string, personID int64) (*model.TagBinding, error)
	DeleteBinding(ctx context.Context, uid string) error
	ResolveTagOwner(ctx context.Context, uid string) (*model.Person, error)
	GetPersonByID(ctx context.Context, id int64) (*model.Person, error)
}

// DirectoryService maintains the tag-to-person directory.
type DirectoryService struct {
	store   DirectoryStore
	metrics metrics.Recorder
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(store DirectoryStore, recorder metrics.Recorder) *DirectoryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DirectoryService{store: store, metrics: recorder}
}

// Associate binds a tag to a person, re-owning the tag if it was
// already bound. Idempotent. Admin only.
func (s *DirectoryService) Associate(ctx context.Context, caller model.Caller, uid string, personID int64) (*model.TagBinding, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if uid == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.store.GetPersonByID(ctx, personID); err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, unavailable(err)
	}

	binding, err := s.store.UpsertBinding(ctx, uid, personID)
	if err != nil {
		return nil, unavailable(err)
	}

	s.metrics.IncBindingAssociated()

	return binding, nil
}

// Disassociate removes the binding for a tag. Admin only.
func (s *DirectoryService) Disassociate(ctx context.Context, caller model.Caller, uid string) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if uid == "" {
		return ErrInvalidInput
	}

	if err := s.store.DeleteBinding(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrBindingNotFound) {
			return ErrBindingNotFound
		}
		return unavailable(err)
	}

	s.metrics.IncBindingRemoved()

	return nil
}

// Resolve looks up the current owner of a tag. Public: it never
// exposes more than the id, name and email of the owner. A bound tag
// without an owner resolves to nil with no error.
func (s *DirectoryService) Resolve(ctx context.Context, uid string) (*model.PersonSummary, error) {
	if uid == "" {
		return nil, ErrInvalidInput
	}

	person, err := s.store.ResolveTagOwner(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrBindingNotFound) {
			return nil, ErrBindingNotFound
		}
		return nil, unavailable(err)
	}

	return person.Summary(), nil
}
