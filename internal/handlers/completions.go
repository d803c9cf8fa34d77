package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/models"
)

// CompletionHandler records finished care and maintenance work and serves the
// per-subject history.
type CompletionHandler struct {
	store db.CompletionStore
}

// NewCompletionHandler creates a new completion handler
func NewCompletionHandler(store db.CompletionStore) *CompletionHandler {
	return &CompletionHandler{store: store}
}

// completionRequest is the wire shape of a completion. CompletedAt defaults
// to the request time; backdated completions are allowed as long as they do
// not rewind the subject's last-completion pointer.
type completionRequest struct {
	SubjectID         string     `json:"subject_id"`
	SubjectKind       string     `json:"subject_kind"`
	TaskName          string     `json:"task_name"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	UsageAtCompletion *float64   `json:"usage_at_completion,omitempty"`
	Cost              float64    `json:"cost,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// Completions dispatches by method: POST records, GET serves history.
func (h *CompletionHandler) Completions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.Record(w, r)
	case http.MethodGet:
		h.History(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Record handles POST /api/completions.
func (h *CompletionHandler) Record(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req completionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.SubjectID == "" || req.TaskName == "" {
		http.Error(w, "subject_id and task_name are required", http.StatusBadRequest)
		return
	}
	switch req.SubjectKind {
	case "plant", "vehicle", "chore":
	default:
		http.Error(w, "subject_kind must be plant, vehicle, or chore", http.StatusBadRequest)
		return
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	rec := models.CompletionRecord{
		SubjectID:         req.SubjectID,
		SubjectKind:       req.SubjectKind,
		TaskName:          req.TaskName,
		CompletedAt:       completedAt,
		UsageAtCompletion: req.UsageAtCompletion,
		Cost:              req.Cost,
		Notes:             req.Notes,
	}

	if err := h.store.RecordCompletion(r.Context(), rec); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Subject or task not found", http.StatusNotFound)
		case errors.Is(err, db.ErrOutOfOrderCompletion):
			http.Error(w, "Completion predates the last recorded completion", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

// History handles GET /api/completions?subject_id=...
func (h *CompletionHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		http.Error(w, "subject_id is required", http.StatusBadRequest)
		return
	}

	recs, err := h.store.ListCompletions(r.Context(), subjectID)
	if err != nil {
		http.Error(w, "Failed to list completions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}
