package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRule is returned when a recurrence rule fails validation at
// construction time. The calculator assumes a validated rule and never
// re-checks these conditions.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// UsageUnit identifies the cumulative counter a usage-based rule tracks.
type UsageUnit string

const (
	UnitMiles UsageUnit = "miles"
	UnitHours UsageUnit = "hours"
)

// IsValidUsageUnit checks if a usage unit is one we track.
func IsValidUsageUnit(u UsageUnit) bool {
	return u == UnitMiles || u == UnitHours
}

// UsageInterval is a usage-based repeat: service every Amount units.
type UsageInterval struct {
	Unit   UsageUnit `bson:"unit" json:"unit"`
	Amount float64   `bson:"amount" json:"amount"`
}

// RecurrenceRule describes how a maintenance or care task repeats. A rule may
// repeat on elapsed days, on a usage counter, or both at once (a vehicle
// serviced "every 5000 mi or 180 days, whichever first"). ManualDueDate is a
// one-time override that outranks the computed recurrence until a completion
// consumes it.
//
// A rule with none of the three fields set is unscheduled: it never comes due.
type RecurrenceRule struct {
	IntervalDays  int            `bson:"interval_days,omitempty" json:"interval_days,omitempty"`
	IntervalUsage *UsageInterval `bson:"interval_usage,omitempty" json:"interval_usage,omitempty"`
	ManualDueDate *time.Time     `bson:"manual_due_date,omitempty" json:"manual_due_date,omitempty"`
}

// NewRecurrenceRule builds a validated rule. Malformed rules are rejected
// here, never coerced: a negative day interval or a non-positive usage amount
// wraps ErrInvalidRule.
func NewRecurrenceRule(intervalDays int, usage *UsageInterval, manualDue *time.Time) (RecurrenceRule, error) {
	r := RecurrenceRule{IntervalDays: intervalDays, IntervalUsage: usage, ManualDueDate: manualDue}
	if err := r.Validate(); err != nil {
		return RecurrenceRule{}, err
	}
	return r, nil
}

// Validate checks the rule's invariants.
func (r RecurrenceRule) Validate() error {
	if r.IntervalDays < 0 {
		return fmt.Errorf("%w: interval_days must not be negative, got %d", ErrInvalidRule, r.IntervalDays)
	}
	if r.IntervalUsage != nil {
		if !IsValidUsageUnit(r.IntervalUsage.Unit) {
			return fmt.Errorf("%w: unknown usage unit %q", ErrInvalidRule, r.IntervalUsage.Unit)
		}
		if r.IntervalUsage.Amount <= 0 {
			return fmt.Errorf("%w: usage amount must be positive, got %v", ErrInvalidRule, r.IntervalUsage.Amount)
		}
	}
	return nil
}

// Unscheduled reports whether the rule can never produce a due date.
func (r RecurrenceRule) Unscheduled() bool {
	return r.IntervalDays == 0 && r.IntervalUsage == nil && r.ManualDueDate == nil
}

// HasRecurrence reports whether the rule repeats on its own (days or usage),
// as opposed to carrying only a one-shot manual due date.
func (r RecurrenceRule) HasRecurrence() bool {
	return r.IntervalDays > 0 || r.IntervalUsage != nil
}
