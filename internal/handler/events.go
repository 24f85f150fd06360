package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/service"
)

// EventHandler serves event listings and CSV exports.
type EventHandler struct {
	svc    *service.EventService
	logger *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		logger: logger.With("component", "handler.events"),
	}
}

// List handles GET /api/v1/events.
// Query: personId, start, end (Unix millis), page, pageSize.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	filter := parseEventFilter(r)
	page := parseIntParam(r, "page", 1)
	pageSize := parseIntParam(r, "pageSize", service.DefaultPageSize)

	result, err := h.svc.List(r.Context(), caller, filter, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExportCSV handles GET /api/v1/events/export.csv (admin).
// Streams the full filtered set as a CSV attachment.
func (h *EventHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	filter := parseEventFilter(r)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="registros.csv"`)

	if err := h.svc.ExportCSV(r.Context(), caller, filter, w); err != nil {
		// Headers may already be out; reset them if nothing was
		// written yet.
		w.Header().Del("Content-Disposition")
		writeServiceError(w, err)
		return
	}

	h.logger.Info("events_exported", "by", caller.PersonID)
}

// parseEventFilter extracts the shared event filter from query params.
// Unparseable values are dropped rather than rejected.
func parseEventFilter(r *http.Request) model.EventFilter {
	query := r.URL.Query()
	var filter model.EventFilter

	if v := query.Get("personId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.PersonID = &id
		}
	}
	if v := query.Get("start"); v != "" {
		if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.UnixMilli(millis).UTC()
			filter.Start = &t
		}
	}
	if v := query.Get("end"); v != "" {
		if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.UnixMilli(millis).UTC()
			filter.End = &t
		}
	}

	return filter
}

// parseIntParam reads a positive integer query param with a default.
func parseIntParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
