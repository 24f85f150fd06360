package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/repository"
)

type fakePersonStore struct {
	persons map[string]*model.Person
	nextID  int64

	createErr error
	listErr   error
}

func newFakePersonStore() *fakePersonStore {
	return &fakePersonStore{persons: make(map[string]*model.Person)}
}

func (f *fakePersonStore) CreatePerson(_ context.Context, person *model.Person) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.persons[person.Email]; ok {
		return repository.ErrEmailExists
	}
	f.nextID++
	person.ID = f.nextID
	person.CreatedAt = time.Now().UTC()
	stored := *person
	f.persons[person.Email] = &stored
	return nil
}

func (f *fakePersonStore) GetPersonByEmail(_ context.Context, email string) (*model.Person, error) {
	person, ok := f.persons[email]
	if !ok {
		return nil, repository.ErrPersonNotFound
	}
	return person, nil
}

func (f *fakePersonStore) ListPersons(_ context.Context) ([]*model.Person, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*model.Person, 0, len(f.persons))
	for _, p := range f.persons {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func newPersonService(store PersonStore) *PersonService {
	return NewPersonService(store, "test-secret", "pontus-test", time.Hour)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	store := newFakePersonStore()
	svc := newPersonService(store)

	person, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Ana  ",
		Email:    "  Ana@Test.Local ",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if person.Email != "ana@test.local" {
		t.Errorf("email should be normalized, got %q", person.Email)
	}
	if person.Name != "Ana" {
		t.Errorf("name should be trimmed, got %q", person.Name)
	}
	if person.Role != model.RoleUser {
		t.Errorf("absent role should default to user, got %s", person.Role)
	}
	if person.PasswordHash == "s3cret" || person.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	match, err := auth.VerifyPassword("s3cret", person.PasswordHash)
	if err != nil || !match {
		t.Error("stored hash should verify against the password")
	}
}

func TestRegisterValidations(t *testing.T) {
	t.Parallel()

	svc := newPersonService(newFakePersonStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Password: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing email: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.c"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing password: expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newPersonService(newFakePersonStore())
	ctx := context.Background()

	input := RegisterInput{Name: "Ana", Email: "ana@test.local", Password: "x"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterIgnoresSubmittedRole(t *testing.T) {
	t.Parallel()

	// Self-registration must never honor the requested role, least of
	// all "admin".
	tests := []struct {
		name string
		role string
	}{
		{"admin requested", "admin"},
		{"unrecognized role", "superuser"},
		{"empty role", ""},
	}

	for i, tt := range tests {
		tt := tt
		email := fmt.Sprintf("p%d@test.local", i)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakePersonStore()
			svc := newPersonService(store)

			person, err := svc.Register(context.Background(), RegisterInput{
				Email: email, Password: "x", Role: tt.role,
			})
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if person.Role != model.RoleUser {
				t.Errorf("registered role = %s, want %s", person.Role, model.RoleUser)
			}
			if stored := store.persons[email]; stored.Role != model.RoleUser {
				t.Errorf("stored role = %s, want %s", stored.Role, model.RoleUser)
			}

			// The issued token must carry the user role too.
			token, _, err := svc.Login(context.Background(), email, "x")
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			claims, err := auth.ParseToken(token, "test-secret", "pontus-test")
			if err != nil {
				t.Fatalf("issued token should parse: %v", err)
			}
			if caller := claims.Caller(); caller.IsAdmin() {
				t.Error("self-registered account must not obtain an admin token")
			}
		})
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newPersonService(newFakePersonStore())
	ctx := context.Background()

	input := RegisterInput{Email: "ana@test.local", Password: "x", Role: "admin"}
	if _, err := svc.Create(ctx, regular(5), input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	person, err := svc.Create(ctx, admin(), input)
	if err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if person.Role != model.RoleAdmin {
		t.Errorf("admin may assign the admin role, got %s", person.Role)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	store := newFakePersonStore()
	svc := newPersonService(store)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@test.local", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, person, err := svc.Login(ctx, "ANA@test.local", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if person.ID != registered.ID {
		t.Errorf("login returned wrong person: %d", person.ID)
	}

	claims, err := auth.ParseToken(token, "test-secret", "pontus-test")
	if err != nil {
		t.Fatalf("issued token should parse: %v", err)
	}
	caller := claims.Caller()
	if caller.PersonID != registered.ID || caller.Role != model.RoleUser {
		t.Errorf("token caller mismatch: %+v", caller)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	store := newFakePersonStore()
	svc := newPersonService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "ana@test.local", Password: "s3cret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Unknown email and wrong password are the same error.
	if _, _, err := svc.Login(ctx, "ghost@test.local", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@test.local", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty credentials: expected ErrInvalidInput, got %v", err)
	}
}

func TestListPersons(t *testing.T) {
	t.Parallel()

	store := newFakePersonStore()
	svc := newPersonService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "ana@test.local", Password: "x"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.List(ctx, regular(5)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin: expected ErrForbidden, got %v", err)
	}

	persons, err := svc.List(ctx, admin())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(persons) != 1 {
		t.Fatalf("expected 1 person, got %d", len(persons))
	}
	if persons[0].PasswordHash != "" {
		t.Error("credential hash must not leave the service")
	}
}
