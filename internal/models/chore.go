package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChoreKind distinguishes actionable tasks from time-anchored events.
type ChoreKind string

const (
	ChoreKindTask  ChoreKind = "task"
	ChoreKindEvent ChoreKind = "event" // non-actionable; expires silently, never overdue
)

// Chore is a one-off household task or calendar event. Chores have no
// recurrence of their own: their schedule is a single due date, optionally
// narrowed to a time of day.
type Chore struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Kind        ChoreKind          `bson:"kind" json:"kind"`
	DueDate     *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	DueTime     string             `bson:"due_time,omitempty" json:"due_time,omitempty"` // "15:04", empty for all-day
	Backlog     bool               `bson:"backlog" json:"backlog"`
	Completed   bool               `bson:"completed" json:"completed"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	AssignedTo  string             `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// DueAt combines DueDate and DueTime into a single comparable instant in loc.
// An all-day chore is due at end of its day, so a date-only chore is not
// overdue until the day has passed. Returns nil when no due date is set.
func (c *Chore) DueAt(loc *time.Location) *time.Time {
	if c.DueDate == nil {
		return nil
	}
	d := c.DueDate.In(loc)
	if c.DueTime == "" {
		t := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
		return &t
	}
	hm, err := time.Parse("15:04", c.DueTime)
	if err != nil {
		t := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
		return &t
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), hm.Hour(), hm.Minute(), 0, 0, loc)
	return &t
}
