package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/repository"
)

type fakeDirectoryStore struct {
	persons  map[int64]*model.Person
	bindings map[string]*model.TagBinding

	upsertErr error
	deleteErr error
}

func newFakeDirectoryStore() *fakeDirectoryStore {
	return &fakeDirectoryStore{
		persons:  make(map[int64]*model.Person),
		bindings: make(map[string]*model.TagBinding),
	}
}

func (f *fakeDirectoryStore) UpsertBinding(_ context.Context, uid string, personID int64) (*model.TagBinding, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	now := time.Now().UTC()
	binding, ok := f.bindings[uid]
	if !ok {
		binding = &model.TagBinding{UID: uid, CreatedAt: now}
		f.bindings[uid] = binding
	}
	binding.PersonID = &personID
	binding.UpdatedAt = now
	return binding, nil
}

func (f *fakeDirectoryStore) DeleteBinding(_ context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.bindings[uid]; !ok {
		return repository.ErrBindingNotFound
	}
	delete(f.bindings, uid)
	return nil
}

func (f *fakeDirectoryStore) ResolveTagOwner(_ context.Context, uid string) (*model.Person, error) {
	binding, ok := f.bindings[uid]
	if !ok {
		return nil, repository.ErrBindingNotFound
	}
	if binding.PersonID == nil {
		return nil, nil
	}
	return f.persons[*binding.PersonID], nil
}

func (f *fakeDirectoryStore) GetPersonByID(_ context.Context, id int64) (*model.Person, error) {
	person, ok := f.persons[id]
	if !ok {
		return nil, repository.ErrPersonNotFound
	}
	return person, nil
}

func TestAssociateRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewDirectoryService(newFakeDirectoryStore(), nil)

	if _, err := svc.Associate(context.Background(), regular(5), "04:AA", 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAssociateValidations(t *testing.T) {
	t.Parallel()

	store := newFakeDirectoryStore()
	store.persons[7] = &model.Person{ID: 7, Name: "Ana"}
	svc := NewDirectoryService(store, nil)
	ctx := context.Background()

	if _, err := svc.Associate(ctx, admin(), "", 7); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty uid: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Associate(ctx, admin(), "04:AA", 404); !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("missing person: expected ErrPersonNotFound, got %v", err)
	}
}

func TestAssociateReassignsOwnership(t *testing.T) {
	t.Parallel()

	store := newFakeDirectoryStore()
	store.persons[1] = &model.Person{ID: 1, Name: "Ana"}
	store.persons[2] = &model.Person{ID: 2, Name: "Bruno"}
	svc := NewDirectoryService(store, nil)
	ctx := context.Background()

	if _, err := svc.Associate(ctx, admin(), "04:AA", 1); err != nil {
		t.Fatalf("first associate failed: %v", err)
	}

	binding, err := svc.Associate(ctx, admin(), "04:AA", 2)
	if err != nil {
		t.Fatalf("reassociate failed: %v", err)
	}
	if binding.PersonID == nil || *binding.PersonID != 2 {
		t.Fatalf("binding should point at person 2, got %v", binding.PersonID)
	}

	owner, err := svc.Resolve(ctx, "04:AA")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if owner == nil || owner.ID != 2 || owner.Name != "Bruno" {
		t.Errorf("resolution should follow the latest binding, got %+v", owner)
	}
}

func TestDisassociate(t *testing.T) {
	t.Parallel()

	store := newFakeDirectoryStore()
	store.persons[1] = &model.Person{ID: 1, Name: "Ana"}
	svc := NewDirectoryService(store, nil)
	ctx := context.Background()

	if err := svc.Disassociate(ctx, regular(5), "04:AA"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin: expected ErrForbidden, got %v", err)
	}
	if err := svc.Disassociate(ctx, admin(), "04:AA"); !errors.Is(err, ErrBindingNotFound) {
		t.Fatalf("unknown tag: expected ErrBindingNotFound, got %v", err)
	}

	if _, err := svc.Associate(ctx, admin(), "04:AA", 1); err != nil {
		t.Fatalf("associate failed: %v", err)
	}
	if err := svc.Disassociate(ctx, admin(), "04:AA"); err != nil {
		t.Fatalf("disassociate failed: %v", err)
	}

	if _, err := svc.Resolve(ctx, "04:AA"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("removed tag should not resolve, got %v", err)
	}

	// The tag is free to be bound again.
	if _, err := svc.Associate(ctx, admin(), "04:AA", 1); err != nil {
		t.Errorf("rebinding a freed tag failed: %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	store := newFakeDirectoryStore()
	store.persons[1] = &model.Person{ID: 1, Name: "Ana", Email: "ana@test.local"}
	store.bindings["04:AA"] = &model.TagBinding{UID: "04:AA"}
	orphanOwner := int64(1)
	store.bindings["04:BB"] = &model.TagBinding{UID: "04:BB", PersonID: &orphanOwner}
	svc := NewDirectoryService(store, nil)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty uid: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Resolve(ctx, "missing"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("unknown tag: expected ErrBindingNotFound, got %v", err)
	}

	// Bound but ownerless resolves to nil without error.
	owner, err := svc.Resolve(ctx, "04:AA")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if owner != nil {
		t.Errorf("ownerless binding should resolve to nil, got %+v", owner)
	}

	owner, err = svc.Resolve(ctx, "04:BB")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if owner == nil || owner.Email != "ana@test.local" {
		t.Errorf("expected owner summary, got %+v", owner)
	}
}

func TestAssociateStoreFailure(t *testing.T) {
	t.Parallel()

	store := newFakeDirectoryStore()
	store.persons[1] = &model.Person{ID: 1}
	store.upsertErr = errors.New("down")
	svc := NewDirectoryService(store, nil)

	if _, err := svc.Associate(context.Background(), admin(), "04:AA", 1); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
