package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oakmoor/homestead-ops/internal/adapters"
	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/models"
)

// SubjectRepo combines the read and write sides the subject API needs.
type SubjectRepo interface {
	db.SubjectStore
	db.SubjectWriter
}

// SubjectsHandler serves the plant, vehicle, and chore collections. Schedules
// and recurrence rules are validated here, at write time, so the evaluation
// cycle never meets malformed data it has to guess about.
type SubjectsHandler struct {
	repo SubjectRepo
}

// NewSubjectsHandler creates a new subjects handler
func NewSubjectsHandler(repo SubjectRepo) *SubjectsHandler {
	return &SubjectsHandler{repo: repo}
}

// Plants handles GET and POST /api/plants.
func (h *SubjectsHandler) Plants(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		plants, err := h.repo.ListPlants(r.Context())
		if err != nil {
			http.Error(w, "Failed to list plants", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plants)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var plant models.Plant
		if err := json.Unmarshal(body, &plant); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := validatePlant(&plant); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := h.repo.InsertPlant(r.Context(), plant)
		if err != nil {
			http.Error(w, "Failed to create plant", http.StatusInternalServerError)
			return
		}
		writeCreated(w, id)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Vehicles handles GET and POST /api/vehicles.
func (h *SubjectsHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vehicles, err := h.repo.ListVehicles(r.Context())
		if err != nil {
			http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vehicles)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var vehicle models.Vehicle
		if err := json.Unmarshal(body, &vehicle); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := validateVehicle(&vehicle); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := h.repo.InsertVehicle(r.Context(), vehicle)
		if err != nil {
			http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
			return
		}
		writeCreated(w, id)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Chores handles GET and POST /api/chores.
func (h *SubjectsHandler) Chores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		chores, err := h.repo.ListChores(r.Context())
		if err != nil {
			http.Error(w, "Failed to list chores", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chores)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var chore models.Chore
		if err := json.Unmarshal(body, &chore); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := validateChore(&chore); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := h.repo.InsertChore(r.Context(), chore)
		if err != nil {
			http.Error(w, "Failed to create chore", http.StatusInternalServerError)
			return
		}
		writeCreated(w, id)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func validatePlant(p *models.Plant) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := adapters.ParseSeasonSchedule(p.WaterSchedule); err != nil {
		return fmt.Errorf("water_schedule: %w", err)
	}
	if _, err := adapters.ParseSeasonSchedule(p.FertilizeSchedule); err != nil {
		return fmt.Errorf("fertilize_schedule: %w", err)
	}
	return nil
}

func validateVehicle(v *models.Vehicle) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !models.IsValidUsageUnit(v.UsageUnit) {
		return fmt.Errorf("usage_unit must be %q or %q", models.UnitMiles, models.UnitHours)
	}
	seen := map[string]bool{}
	for i := range v.Maintenance {
		item := &v.Maintenance[i]
		if item.Name == "" {
			return fmt.Errorf("maintenance item name is required")
		}
		if seen[item.Name] {
			return fmt.Errorf("duplicate maintenance item %q", item.Name)
		}
		seen[item.Name] = true

		// Run the item through rule construction so a malformed frequency
		// is rejected before it is stored.
		var usage *models.UsageInterval
		switch {
		case v.UsageUnit == models.UnitMiles && item.FrequencyMiles != 0:
			usage = &models.UsageInterval{Unit: models.UnitMiles, Amount: item.FrequencyMiles}
		case v.UsageUnit == models.UnitHours && item.FrequencyHours != 0:
			usage = &models.UsageInterval{Unit: models.UnitHours, Amount: item.FrequencyHours}
		}
		if _, err := models.NewRecurrenceRule(item.FrequencyDays, usage, item.ManualDueDate); err != nil {
			return fmt.Errorf("maintenance item %q: %w", item.Name, err)
		}
	}
	return nil
}

func validateChore(c *models.Chore) error {
	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	switch c.Kind {
	case "", models.ChoreKindTask, models.ChoreKindEvent:
	default:
		return fmt.Errorf("kind must be %q or %q", models.ChoreKindTask, models.ChoreKindEvent)
	}
	if c.DueTime != "" {
		if c.DueDate == nil {
			return fmt.Errorf("due_time requires a due_date")
		}
		if _, err := time.Parse("15:04", c.DueTime); err != nil {
			return fmt.Errorf("due_time must be in HH:MM form")
		}
	}
	if c.Kind == models.ChoreKindEvent && c.DueDate == nil {
		return fmt.Errorf("events require a due_date")
	}
	return nil
}

func writeCreated(w http.ResponseWriter, id string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}
