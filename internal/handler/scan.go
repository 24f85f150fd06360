package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pontus/pontus/internal/model"
	"github.com/pontus/pontus/internal/service"
)

// ScanHandler accepts raw scans from readers.
type ScanHandler struct {
	svc    *service.IntakeService
	logger *slog.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(svc *service.IntakeService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		svc:    svc,
		logger: logger.With("component", "handler.scan"),
	}
}

// scanRequest keeps the wire names the reader firmware already sends.
// Timestamp is Unix milliseconds of the tap itself, not of delivery.
type scanRequest struct {
	UID       string `json:"uid"`
	Timestamp *int64 `json:"timestamp"`
	Device    string `json:"device"`
}

// Submit handles POST /api/v1/scans.
func (h *ScanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// Ignored scans have no record id of their own, so every attempt
	// gets a ULID for log correlation.
	scanID := ulid.Make().String()

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.ScanInput{
		UID:    req.UID,
		Device: req.Device,
	}
	if req.Timestamp != nil && *req.Timestamp > 0 {
		input.EventTime = time.UnixMilli(*req.Timestamp).UTC()
	}

	result, err := h.svc.SubmitScan(r.Context(), input)
	if err != nil {
		h.logger.Warn("scan_rejected",
			"scan_id", scanID,
			"uid", req.UID,
			"device", req.Device,
			"error", err,
		)
		writeServiceError(w, err)
		return
	}

	h.logger.Info("scan_processed",
		"scan_id", scanID,
		"uid", req.UID,
		"device", req.Device,
		"status", string(result.Status),
		"event_id", result.EventID,
	)

	status := http.StatusOK
	if result.Status == model.ScanCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
