package schedule

import (
	"time"
)

// Occurrence is one due/overdue/completed instance of a schedule at a point
// in time, flattened into the shape the triage engine sorts. Adapters build
// these from plants, vehicle maintenance items, and chores.
type Occurrence struct {
	SubjectID   string     `json:"subject_id"`
	SubjectKind string     `json:"subject_kind"` // "plant", "vehicle", "chore"
	TaskName    string     `json:"task_name"`    // "water", "oil_change", chore title
	Title       string     `json:"title"`
	Status      DueStatus  `json:"status"`
	DueAt       *time.Time `json:"due_at,omitempty"` // combined date+time for timed chores
	Event       bool       `json:"event"`            // time-anchored, non-actionable
	Backlog     bool       `json:"backlog"`
	Completed   bool       `json:"completed"`
}

// Buckets are the UI-ready partitions of a day's occurrences. Past-due
// actionable items appear in both Overdue and Today so they stay visible on
// the day view; hiding completed items is a display preference applied
// outside the engine.
type Buckets struct {
	Today     []Occurrence `json:"today"`
	Backlog   []Occurrence `json:"backlog"`
	Overdue   []Occurrence `json:"overdue"`
	Completed []Occurrence `json:"completed"`
}

// Triager partitions occurrences for a given day. Loc is the household's
// configured timezone; calendar-day comparisons happen in it.
type Triager struct {
	Loc *time.Location
}

// Triage sorts occurrences into buckets relative to now.
//
// Rules, in order per occurrence:
//   - completed stays in the day's buckets (Completed, plus Today when it was
//     due today);
//   - a backlog-flagged item goes only to Backlog, whatever its due status;
//   - events never become overdue: past events expire silently;
//   - timed items compare the combined date+time against now, so a task due
//     today at 14:00 is not overdue at 10:00;
//   - items with no due point at all are not yet actionable and are excluded.
func (t Triager) Triage(occs []Occurrence, now time.Time) Buckets {
	loc := t.Loc
	if loc == nil {
		loc = now.Location()
	}
	nowLocal := now.In(loc)

	var b Buckets
	for _, o := range occs {
		due := o.DueAt
		if due == nil {
			due = o.Status.NextDueAt
		}

		if o.Completed {
			b.Completed = append(b.Completed, o)
			if due != nil && sameDay(due.In(loc), nowLocal) {
				b.Today = append(b.Today, o)
			}
			continue
		}
		if o.Backlog {
			b.Backlog = append(b.Backlog, o)
			continue
		}

		if due == nil {
			// Usage-based overdue has no calendar due point but is
			// still actionable now.
			if o.Status.State == StateOverdue {
				b.Overdue = append(b.Overdue, o)
				b.Today = append(b.Today, o)
			}
			continue
		}

		d := due.In(loc)
		switch {
		case !nowLocal.Before(d): // past due
			if o.Event {
				// Expired event; drop it.
				continue
			}
			b.Overdue = append(b.Overdue, o)
			b.Today = append(b.Today, o)
		case sameDay(d, nowLocal):
			b.Today = append(b.Today, o)
		case o.Status.State == StateOverdue:
			// Dual-condition rule overdue on usage while the calendar
			// half still lies ahead.
			b.Overdue = append(b.Overdue, o)
			b.Today = append(b.Today, o)
		}
	}
	return b
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
