package handler

import (
	"fmt"
	"net/http"

	"github.com/pontus/pontus/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "pontus_scans_total{status=\"created\"} %d\n", snap.ScansCreated)
	writeMetric(w, "pontus_scans_total{status=\"ignored\"} %d\n", snap.ScansIgnored)
	writeMetric(w, "pontus_scans_total{status=\"rejected\"} %d\n", snap.ScansRejected)
	writeMetric(w, "pontus_scan_intake_duration_seconds_count %d\n", snap.IntakeDurationCount)
	writeMetric(w, "pontus_scan_intake_duration_seconds_sum %.6f\n", float64(snap.IntakeDurationTotalNs)/1e9)

	writeMetric(w, "pontus_tag_bindings_associated_total %d\n", snap.BindingsAssociated)
	writeMetric(w, "pontus_tag_bindings_removed_total %d\n", snap.BindingsRemoved)

	writeMetric(w, "pontus_event_listings_total %d\n", snap.EventsListed)
	writeMetric(w, "pontus_exports_generated_total %d\n", snap.ExportsGenerated)
	writeMetric(w, "pontus_export_rows_total %d\n", snap.ExportRowsTotal)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
