package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/repository"
)

// PersonStore is the persistence contract the auth boundary needs.
type PersonStore interface {
	CreatePerson(ctx context.Context, person *model.Person) error
	GetPersonByEmail(ctx context.Context, email string) (*model.Person, error)
	ListPersons(ctx context.Context) ([]*model.Person, error)
}

// PersonService owns registration, login and admin person management.
type PersonService struct {
	store     PersonStore
	jwtSecret string
	jwtIssuer string
	tokenTTL  time.Duration
}

// NewPersonService creates a new PersonService.
func NewPersonService(store PersonStore, jwtSecret, jwtIssuer string, tokenTTL time.Duration) *PersonService {
	return &PersonService{
		store:     store,
		jwtSecret: jwtSecret,
		jwtIssuer: jwtIssuer,
		tokenTTL:  tokenTTL,
	}
}

// RegisterInput is the payload for creating a person.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a person with a hashed credential. Self-service
// accounts always get the user role; a submitted role is ignored so
// the public endpoint can never mint an admin.
func (s *PersonService) Register(ctx context.Context, input RegisterInput) (*model.Person, error) {
	return s.createPerson(ctx, input, model.RoleUser)
}

// Create registers a person on behalf of an admin. Only here is the
// requested role honored, defaulting to user when unrecognized.
func (s *PersonService) Create(ctx context.Context, caller model.Caller, input RegisterInput) (*model.Person, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.createPerson(ctx, input, model.ParseRole(input.Role))
}

func (s *PersonService) createPerson(ctx context.Context, input RegisterInput, role model.Role) (*model.Person, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	person := &model.Person{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.store.CreatePerson(ctx, person); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, unavailable(err)
	}

	return person, nil
}

// Login checks a credential and issues an access token.
// Unknown email and wrong password are indistinguishable to the
// caller to prevent account enumeration.
func (s *PersonService) Login(ctx context.Context, email, password string) (string, *model.Person, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidInput
	}

	person, err := s.store.GetPersonByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, unavailable(err)
	}

	match, err := auth.VerifyPassword(password, person.PasswordHash)
	if err != nil || !match {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(person, s.jwtSecret, s.jwtIssuer, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	return token, person, nil
}

// List returns all registered persons. Admin only; credential hashes
// never leave the service.
func (s *PersonService) List(ctx context.Context, caller model.Caller) ([]*model.Person, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	persons, err := s.store.ListPersons(ctx)
	if err != nil {
		return nil, unavailable(err)
	}

	for _, p := range persons {
		p.PasswordHash = ""
	}

	return persons, nil
}
