package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/oakmoor/homestead-ops/internal/db"
)

// UsageWriter records odometer/hour-meter readings against a vehicle.
type UsageWriter interface {
	UpdateVehicleUsage(ctx context.Context, id string, reading float64, at time.Time) error
}

// ForecastSink accepts the latest forecast low for cold-protection checks.
type ForecastSink interface {
	SetForecastLow(v float64)
}

// ReadingsHandler ingests usage readings and forecast lows over HTTP. The
// MQTT feed covers instrumented vehicles; this path covers manual entry and
// equipment without a reporter.
type ReadingsHandler struct {
	usage    UsageWriter
	forecast ForecastSink
}

// NewReadingsHandler creates a new readings handler
func NewReadingsHandler(usage UsageWriter, forecast ForecastSink) *ReadingsHandler {
	return &ReadingsHandler{usage: usage, forecast: forecast}
}

type usageRequest struct {
	VehicleID  string     `json:"vehicle_id"`
	Reading    float64    `json:"reading"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// PostUsage handles POST /api/readings/usage.
func (h *ReadingsHandler) PostUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req usageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.VehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}
	if req.Reading < 0 {
		http.Error(w, "reading must not be negative", http.StatusBadRequest)
		return
	}

	at := time.Now()
	if req.RecordedAt != nil {
		at = *req.RecordedAt
	}

	if err := h.usage.UpdateVehicleUsage(r.Context(), req.VehicleID, req.Reading, at); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type forecastRequest struct {
	Low *float64 `json:"low"`
}

// PostForecast handles POST /api/readings/forecast. Forecast acquisition is
// external; whoever fetches the weather pushes the overnight low here.
func (h *ReadingsHandler) PostForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req forecastRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Low == nil {
		http.Error(w, "low is required", http.StatusBadRequest)
		return
	}

	h.forecast.SetForecastLow(*req.Low)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
