package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/service"
)

// TagHandler handles tag directory requests.
type TagHandler struct {
	svc    *service.DirectoryService
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc *service.DirectoryService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		svc:    svc,
		logger: logger.With("component", "handler.tag"),
	}
}

type associateRequest struct {
	UID string `json:"uid"`
}

// Associate handles POST /api/v1/persons/{id}/tags (admin).
func (h *TagHandler) Associate(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	personID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Person id must be numeric")
		return
	}

	var req associateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	binding, err := h.svc.Associate(r.Context(), caller, req.UID, personID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("tag_associated",
		"uid", binding.UID,
		"person_id", personID,
		"by", caller.PersonID,
	)

	writeJSON(w, http.StatusOK, binding)
}

// Disassociate handles DELETE /api/v1/tags/{uid} (admin).
func (h *TagHandler) Disassociate(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	uid := chi.URLParam(r, "uid")
	if err := h.svc.Disassociate(r.Context(), caller, uid); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("tag_disassociated", "uid", uid, "by", caller.PersonID)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "uid": uid})
}

// Resolve handles GET /api/v1/tags/{uid} (public).
func (h *TagHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"owner": owner})
}
