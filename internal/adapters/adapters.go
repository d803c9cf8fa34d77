// Package adapters normalizes each subject kind's stored schedule fields into
// the generic rule/completion shapes the calculator consumes. Adapters are
// pure translations: they never call the calculator and have no side effects.
package adapters

import (
	"time"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// CareInput is one recurring task in normalized form: everything the
// calculator and triage engine need, detached from the subject's own field
// names and unit semantics.
type CareInput struct {
	SubjectID   string
	SubjectKind string
	TaskName    string
	Title       string

	Rule           models.RecurrenceRule
	LastCompletion *models.CompletionRecord
	CurrentUsage   *float64
	CreatedAt      time.Time

	// SuppressOverdue forces the computed state back to ok. Used for
	// auto-watered plants: irrigation is assumed to already have occurred.
	SuppressOverdue bool

	DueAt     *time.Time
	Event     bool
	Backlog   bool
	Completed bool
}

// Plant care task names.
const (
	TaskWater     = "water"
	TaskFertilize = "fertilize"
)

// PlantInputs maps a plant's water and fertilize schedules into care inputs.
// The season string applicable at now decides the day interval; a schedule
// with no entry for the current season (or an unparsable one) yields an
// unscheduled rule rather than a guess.
func PlantInputs(p *models.Plant, now time.Time) []CareInput {
	id := p.ID.Hex()
	water := plantCare(p, id, TaskWater, p.WaterSchedule, p.LastWatered, now)
	water.SuppressOverdue = p.AutoWatered()
	fertilize := plantCare(p, id, TaskFertilize, p.FertilizeSchedule, p.LastFertilized, now)
	return []CareInput{water, fertilize}
}

func plantCare(p *models.Plant, id, task, scheduleStr string, last *time.Time, now time.Time) CareInput {
	in := CareInput{
		SubjectID:   id,
		SubjectKind: "plant",
		TaskName:    task,
		Title:       p.Name,
		CreatedAt:   p.CreatedAt,
	}
	sched, err := ParseSeasonSchedule(scheduleStr)
	if err != nil {
		// Bad stored data degrades to unscheduled; writes are where
		// schedules get validated.
		return in
	}
	if days := sched.IntervalDaysAt(now); days > 0 {
		in.Rule = models.RecurrenceRule{IntervalDays: days}
	}
	if last != nil {
		in.LastCompletion = &models.CompletionRecord{
			SubjectID:   id,
			SubjectKind: "plant",
			TaskName:    task,
			CompletedAt: *last,
		}
	}
	return in
}

// VehicleInputs maps each maintenance item on a vehicle into a care input.
// frequency_miles/frequency_hours become the usage interval in the vehicle's
// tracked unit, frequency_days the calendar interval; both set means due when
// either fires. manual_due_date carries through as the one-time override.
func VehicleInputs(v *models.Vehicle) []CareInput {
	id := v.ID.Hex()
	inputs := make([]CareInput, 0, len(v.Maintenance))
	for _, item := range v.Maintenance {
		in := CareInput{
			SubjectID:    id,
			SubjectKind:  "vehicle",
			TaskName:     item.Name,
			Title:        v.Name,
			CreatedAt:    v.CreatedAt,
			CurrentUsage: v.CurrentUsage,
			Rule: models.RecurrenceRule{
				IntervalDays:  item.FrequencyDays,
				IntervalUsage: usageInterval(v.UsageUnit, item),
				ManualDueDate: item.ManualDueDate,
			},
		}
		if in.Rule.Validate() != nil {
			in.Rule = models.RecurrenceRule{}
		}
		if item.LastCompleted != nil {
			in.LastCompletion = &models.CompletionRecord{
				SubjectID:         id,
				SubjectKind:       "vehicle",
				TaskName:          item.Name,
				CompletedAt:       *item.LastCompleted,
				UsageAtCompletion: lastUsage(v.UsageUnit, item),
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func usageInterval(unit models.UsageUnit, item models.MaintenanceItem) *models.UsageInterval {
	switch unit {
	case models.UnitMiles:
		if item.FrequencyMiles > 0 {
			return &models.UsageInterval{Unit: models.UnitMiles, Amount: item.FrequencyMiles}
		}
	case models.UnitHours:
		if item.FrequencyHours > 0 {
			return &models.UsageInterval{Unit: models.UnitHours, Amount: item.FrequencyHours}
		}
	}
	return nil
}

func lastUsage(unit models.UsageUnit, item models.MaintenanceItem) *float64 {
	if unit == models.UnitMiles {
		return item.LastMileage
	}
	return item.LastHours
}

// ChoreInput maps a one-off chore. Its "rule" is always a one-shot manual due
// date; the combined date+time instant also rides along for timed triage.
func ChoreInput(c *models.Chore, loc *time.Location) CareInput {
	in := CareInput{
		SubjectID:   c.ID.Hex(),
		SubjectKind: "chore",
		TaskName:    c.Title,
		Title:       c.Title,
		CreatedAt:   c.CreatedAt,
		Event:       c.Kind == models.ChoreKindEvent,
		Backlog:     c.Backlog,
		Completed:   c.Completed,
	}
	if due := c.DueAt(loc); due != nil {
		in.DueAt = due
		in.Rule = models.RecurrenceRule{ManualDueDate: due}
	}
	return in
}
