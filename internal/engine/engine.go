// Package engine runs the evaluation cycle: load subjects, normalize them
// through the adapters, compute due statuses, triage into buckets, and hand
// triggered alerts to the dispatcher. The same computation serves synchronous
// dashboard renders and the periodic timer.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/oakmoor/homestead-ops/internal/adapters"
	"github.com/oakmoor/homestead-ops/internal/alerts"
	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/notify"
	"github.com/oakmoor/homestead-ops/internal/schedule"
)

// DefaultDedupWindow suppresses re-notification of an unchanged trigger
// between evaluation cycles.
const DefaultDedupWindow = 6 * time.Hour

// Engine evaluates the whole homestead. Now is injected so historical and
// test evaluations can run against arbitrary timestamps.
type Engine struct {
	Subjects   db.SubjectStore
	Calc       schedule.Calculator
	Triager    schedule.Triager
	Dispatcher *notify.Dispatcher

	ColdBufferDegrees  float64
	StorageWarnPercent float64
	StorageCritPercent float64

	// StorageUsedPercent reports disk usage for the storage trigger; nil
	// disables it.
	StorageUsedPercent func() (float64, error)

	Now func() time.Time

	// DedupWindow suppresses identical triggers between cycles; zero
	// means DefaultDedupWindow.
	DedupWindow time.Duration

	mu          sync.Mutex
	forecastLow *float64
	lastFired   map[string]time.Time
}

// SetForecastLow records the latest forecast low for cold-protection checks.
// Forecast acquisition is external; it arrives through the API.
func (e *Engine) SetForecastLow(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forecastLow = &v
}

// ForecastLow returns the last recorded forecast low, if any.
func (e *Engine) ForecastLow() *float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.forecastLow == nil {
		return nil
	}
	v := *e.forecastLow
	return &v
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Snapshot computes the current triage buckets. It is pure over the loaded
// subjects: calling it twice without data changes yields identical buckets.
func (e *Engine) Snapshot(ctx context.Context) (schedule.Buckets, error) {
	now := e.now()

	plants, err := e.Subjects.ListPlants(ctx)
	if err != nil {
		return schedule.Buckets{}, fmt.Errorf("list plants: %w", err)
	}
	vehicles, err := e.Subjects.ListVehicles(ctx)
	if err != nil {
		return schedule.Buckets{}, fmt.Errorf("list vehicles: %w", err)
	}
	chores, err := e.Subjects.ListChores(ctx)
	if err != nil {
		return schedule.Buckets{}, fmt.Errorf("list chores: %w", err)
	}

	var inputs []adapters.CareInput
	for i := range plants {
		inputs = append(inputs, adapters.PlantInputs(&plants[i], now)...)
	}
	for i := range vehicles {
		inputs = append(inputs, adapters.VehicleInputs(&vehicles[i])...)
	}
	loc := e.Triager.Loc
	if loc == nil {
		loc = now.Location()
	}
	for i := range chores {
		inputs = append(inputs, adapters.ChoreInput(&chores[i], loc))
	}

	occs := make([]schedule.Occurrence, 0, len(inputs))
	for _, in := range inputs {
		status := e.Calc.ComputeStatus(in.Rule, in.LastCompletion, in.CurrentUsage, in.CreatedAt, now)
		if in.SuppressOverdue && (status.State == schedule.StateOverdue || status.State == schedule.StateDueSoon) {
			// Auto-watered subjects never flag: irrigation is assumed
			// to already have occurred.
			status = schedule.DueStatus{State: schedule.StateOK, NextDueAt: status.NextDueAt}
		}
		occs = append(occs, schedule.Occurrence{
			SubjectID:   in.SubjectID,
			SubjectKind: in.SubjectKind,
			TaskName:    in.TaskName,
			Title:       in.Title,
			Status:      status,
			DueAt:       in.DueAt,
			Event:       in.Event,
			Backlog:     in.Backlog,
			Completed:   in.Completed,
		})
	}

	return e.Triager.Triage(occs, now), nil
}

// RunCycle performs one periodic evaluation: snapshot, threshold triggers,
// routing, and dispatch. Errors are logged, not returned; the next tick
// retries from scratch.
func (e *Engine) RunCycle(ctx context.Context) {
	buckets, err := e.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Error("evaluation cycle failed")
		return
	}

	triggers := alerts.OverdueTriggers(buckets.Overdue)

	if low := e.ForecastLow(); low != nil {
		plants, err := e.Subjects.ListPlants(ctx)
		if err != nil {
			log.WithError(err).Error("cold protection check failed")
		} else {
			triggers = append(triggers, alerts.ColdProtection(plants, *low, e.ColdBufferDegrees)...)
		}
	}

	if e.StorageUsedPercent != nil {
		if used, err := e.StorageUsedPercent(); err != nil {
			log.WithError(err).Warn("storage check failed")
		} else if trig := alerts.Storage(used, e.StorageWarnPercent, e.StorageCritPercent); trig != nil {
			triggers = append(triggers, *trig)
		}
	}

	triggers = e.dedup(triggers)
	if len(triggers) == 0 {
		return
	}
	log.WithField("triggers", len(triggers)).Info("dispatching alerts")
	e.Dispatcher.Dispatch(ctx, triggers)
}

// dedup drops triggers identical to ones fired within the dedup window, so a
// 5-minute cadence does not re-send the same overdue alert all day.
func (e *Engine) dedup(in []alerts.Trigger) []alerts.Trigger {
	window := e.DedupWindow
	if window <= 0 {
		window = DefaultDedupWindow
	}
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastFired == nil {
		e.lastFired = map[string]time.Time{}
	}

	var out []alerts.Trigger
	for _, t := range in {
		key := string(t.Category) + "|" + t.Subject + "|" + t.Message
		if fired, ok := e.lastFired[key]; ok && now.Sub(fired) < window {
			continue
		}
		e.lastFired[key] = now
		out = append(out, t)
	}
	for key, fired := range e.lastFired {
		if now.Sub(fired) >= window {
			delete(e.lastFired, key)
		}
	}
	return out
}
