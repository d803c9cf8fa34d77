package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/schedule"
)

// Snapshotter computes the current triage buckets on demand.
type Snapshotter interface {
	Snapshot(ctx context.Context) (schedule.Buckets, error)
}

// DashboardHandler serves the day view and the persisted alert list.
type DashboardHandler struct {
	engine Snapshotter
	alerts db.AlertStore
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(engine Snapshotter, alerts db.AlertStore) *DashboardHandler {
	return &DashboardHandler{engine: engine, alerts: alerts}
}

// GetDashboard returns the triage buckets computed at request time. The same
// evaluation backs the periodic cycle, so the dashboard and the alerts always
// agree.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	buckets, err := h.engine.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "Failed to evaluate schedules", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buckets)
}

// ListAlerts returns persisted dashboard alerts, newest first. Pass
// ?unacknowledged=true to hide already-seen alerts.
func (h *DashboardHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	unackedOnly := r.URL.Query().Get("unacknowledged") == "true"
	list, err := h.alerts.ListAlerts(r.Context(), unackedOnly)
	if err != nil {
		http.Error(w, "Failed to list alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// AcknowledgeAlert marks the alert named by ?id= as seen.
func (h *DashboardHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Alert id is required", http.StatusBadRequest)
		return
	}

	if err := h.alerts.AcknowledgeAlert(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to acknowledge alert", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
