package alerts

import (
	"fmt"

	"github.com/oakmoor/homestead-ops/internal/models"
	"github.com/oakmoor/homestead-ops/internal/schedule"
)

// Trigger is one condition that wants to notify: the (category, severity)
// pair the router consumes, plus a human-readable message.
type Trigger struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message"`
}

// ColdProtection flags plants whose minimum temperature, plus a configurable
// buffer, sits above the forecast low. Below the buffer is a warning; at or
// below the plant's own minimum it is critical.
func ColdProtection(plants []models.Plant, forecastLow, buffer float64) []Trigger {
	var out []Trigger
	for _, p := range plants {
		if p.MinTemp == nil {
			continue
		}
		min := *p.MinTemp
		if forecastLow >= min+buffer {
			continue
		}
		sev := SeverityWarning
		if forecastLow <= min {
			sev = SeverityCritical
		}
		out = append(out, Trigger{
			Category: CategoryColdProtection,
			Severity: sev,
			Subject:  p.ID.Hex(),
			Message:  fmt.Sprintf("%s needs cold protection: forecast low %.0f°, minimum %.0f°", p.Name, forecastLow, min),
		})
	}
	return out
}

// Storage flags disk usage against warning/critical percent thresholds.
// Returns nil while usage sits below the warning line.
func Storage(usedPercent, warnPercent, critPercent float64) *Trigger {
	if usedPercent < warnPercent {
		return nil
	}
	sev := SeverityWarning
	if usedPercent >= critPercent {
		sev = SeverityCritical
	}
	return &Trigger{
		Category: CategoryStorage,
		Severity: sev,
		Message:  fmt.Sprintf("storage at %.1f%% of capacity", usedPercent),
	}
}

// OverdueTriggers turns the overdue bucket into per-category triggers so
// overdue plant care and vehicle maintenance notify on their own channels.
func OverdueTriggers(overdue []schedule.Occurrence) []Trigger {
	var out []Trigger
	for _, o := range overdue {
		var cat Category
		switch o.SubjectKind {
		case "plant":
			cat = CategoryPlantCare
		case "vehicle":
			cat = CategoryVehicleMaintenance
		default:
			cat = CategoryChores
		}
		msg := fmt.Sprintf("%s: %s is overdue", o.Title, o.TaskName)
		if o.Status.DaysOverdue > 0 {
			msg = fmt.Sprintf("%s by %d days", msg, o.Status.DaysOverdue)
		} else if o.Status.AmountOverdue > 0 {
			msg = fmt.Sprintf("%s by %.0f units", msg, o.Status.AmountOverdue)
		}
		out = append(out, Trigger{
			Category: cat,
			Severity: SeverityWarning,
			Subject:  o.SubjectID,
			Message:  msg,
		})
	}
	return out
}
