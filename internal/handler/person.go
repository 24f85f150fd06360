package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/service"
)

// PersonHandler handles registration, login and person management.
type PersonHandler struct {
	svc    *service.PersonService
	logger *slog.Logger
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(svc *service.PersonService, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{
		svc:    svc,
		logger: logger.With("component", "handler.person"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string        `json:"token"`
	Person personProfile `json:"person"`
}

type personProfile struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func profileOf(p *model.Person) personProfile {
	return personProfile{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
}

// Register handles POST /api/v1/auth/register.
func (h *PersonHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	// Role is deliberately not forwarded: self-service accounts are
	// always plain users.
	person, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("person_registered", "person_id", person.ID)

	writeJSON(w, http.StatusCreated, profileOf(person))
}

// Login handles POST /api/v1/auth/login.
func (h *PersonHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	token, person, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("login_succeeded", "person_id", person.ID)

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Person: profileOf(person)})
}

// Create handles POST /api/v1/persons (admin).
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	person, err := h.svc.Create(r.Context(), caller, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("person_created", "person_id", person.ID, "by", caller.PersonID)

	writeJSON(w, http.StatusCreated, profileOf(person))
}

// List handles GET /api/v1/persons (admin).
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	persons, err := h.svc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	profiles := make([]personProfile, 0, len(persons))
	for _, p := range persons {
		profiles = append(profiles, profileOf(p))
	}

	writeJSON(w, http.StatusOK, map[string]any{"persons": profiles})
}
