package handler

import (
	"net/http"

	"github.com/pathwise/pathwise/internal/metrics"
)

// MetricsHandler exposes in-process counters for debugging.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Snapshot handles GET /metrics.
func (h *MetricsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshotter.Snapshot())
}
