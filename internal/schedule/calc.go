package schedule

import (
	"time"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// State classifies how a schedule stands relative to now.
type State string

const (
	StateOK          State = "ok"
	StateDueSoon     State = "due_soon"
	StateOverdue     State = "overdue"
	StateUnscheduled State = "unscheduled"
)

// DueStatus is the computed standing of one recurring task. It is derived on
// every evaluation and never persisted.
//
// NextDueAt is only set for calendar-driven rules; a purely usage-based rule
// has no calendar due point and reports through AmountOverdue instead.
type DueStatus struct {
	State         State      `json:"state"`
	NextDueAt     *time.Time `json:"next_due_at,omitempty"`
	DaysOverdue   int        `json:"days_overdue,omitempty"`
	AmountOverdue float64    `json:"amount_overdue,omitempty"`
}

// DefaultLookaheadDays is the due-soon window used when a calculator is
// constructed without one.
const DefaultLookaheadDays = 3

// Calculator computes DueStatus from a validated rule, the subject's last
// completion, and (for usage rules) the current counter reading. It is a pure
// function of its inputs: now is always passed in, never read from the clock.
type Calculator struct {
	// LookaheadDays is the window before a calendar due date during which
	// the state is flagged due_soon.
	LookaheadDays int
}

// NewCalculator returns a calculator with the given due-soon window, falling
// back to DefaultLookaheadDays when days is not positive.
func NewCalculator(days int) Calculator {
	if days <= 0 {
		days = DefaultLookaheadDays
	}
	return Calculator{LookaheadDays: days}
}

// ComputeStatus evaluates rule against now.
//
// Priority order: a pending manual override wins outright; otherwise the
// calendar interval (baselined on the last completion, or on createdAt for a
// never-completed subject) and the usage interval are evaluated side by side
// and the rule is due as soon as EITHER fires.
//
// A usage interval is only evaluable between two readings: the counter at the
// last completion and the current one. Missing either side, the usage
// sub-condition cannot be evaluated: alone it yields unscheduled, alongside a
// calendar interval it is simply skipped. In particular a newly registered
// subject with a high counter and no service history is not overdue; the
// usage clock starts at its first recorded completion.
func (c Calculator) ComputeStatus(rule models.RecurrenceRule, last *models.CompletionRecord, currentUsage *float64, createdAt, now time.Time) DueStatus {
	if rule.Unscheduled() {
		return DueStatus{State: StateUnscheduled}
	}

	if rule.ManualDueDate != nil {
		return c.classifyCalendar(*rule.ManualDueDate, now)
	}

	var calendar *DueStatus
	if rule.IntervalDays > 0 {
		baseline := createdAt
		if last != nil {
			baseline = last.CompletedAt
		}
		s := c.classifyCalendar(baseline.AddDate(0, 0, rule.IntervalDays), now)
		calendar = &s
	}

	var usage *DueStatus
	if rule.IntervalUsage != nil {
		var baseline *float64
		if last != nil {
			baseline = last.UsageAtCompletion
		}
		if currentUsage == nil || baseline == nil {
			if calendar == nil {
				return DueStatus{State: StateUnscheduled}
			}
		} else {
			over := *currentUsage - (*baseline + rule.IntervalUsage.Amount)
			s := DueStatus{State: StateOK}
			if over > 0 {
				s = DueStatus{State: StateOverdue, AmountOverdue: over}
			}
			usage = &s
		}
	}

	return combine(calendar, usage)
}

// classifyCalendar turns a single due instant into a status.
func (c Calculator) classifyCalendar(dueAt, now time.Time) DueStatus {
	due := dueAt
	s := DueStatus{NextDueAt: &due}
	lookahead := time.Duration(c.lookaheadDays()) * 24 * time.Hour
	switch {
	case !now.Before(dueAt):
		s.State = StateOverdue
		s.DaysOverdue = int(now.Sub(dueAt).Hours() / 24)
	case dueAt.Sub(now) <= lookahead:
		s.State = StateDueSoon
	default:
		s.State = StateOK
	}
	return s
}

func (c Calculator) lookaheadDays() int {
	if c.LookaheadDays <= 0 {
		return DefaultLookaheadDays
	}
	return c.LookaheadDays
}

// combine merges the calendar and usage sub-conditions of a dual rule. Either
// condition firing makes the whole rule overdue (union, not intersection).
func combine(calendar, usage *DueStatus) DueStatus {
	if calendar == nil && usage == nil {
		return DueStatus{State: StateUnscheduled}
	}
	if calendar == nil {
		return *usage
	}
	if usage == nil {
		return *calendar
	}

	merged := *calendar
	if usage.State == StateOverdue {
		merged.State = StateOverdue
		merged.AmountOverdue = usage.AmountOverdue
		if calendar.State != StateOverdue {
			merged.DaysOverdue = 0
		}
	}
	return merged
}
