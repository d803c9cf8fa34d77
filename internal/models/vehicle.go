package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceItem is one recurring service task on a vehicle (oil change,
// blade sharpening, inspection). Frequencies may be set in the vehicle's usage
// unit, in days, or both; with both set the item is due as soon as either
// threshold is crossed.
//
// ManualDueDate is a one-time override. It is cleared by the next completion
// unless the user re-sets it on edit.
type MaintenanceItem struct {
	Name           string     `bson:"name" json:"name"` // "oil_change", "tire_rotation", "blade_sharpen", "inspection"
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	FrequencyMiles float64    `bson:"frequency_miles,omitempty" json:"frequency_miles,omitempty"`
	FrequencyHours float64    `bson:"frequency_hours,omitempty" json:"frequency_hours,omitempty"`
	FrequencyDays  int        `bson:"frequency_days,omitempty" json:"frequency_days,omitempty"`
	LastCompleted  *time.Time `bson:"last_completed,omitempty" json:"last_completed,omitempty"`
	LastMileage    *float64   `bson:"last_mileage,omitempty" json:"last_mileage,omitempty"`
	LastHours      *float64   `bson:"last_hours,omitempty" json:"last_hours,omitempty"`
	ManualDueDate  *time.Time `bson:"manual_due_date,omitempty" json:"manual_due_date,omitempty"`
}

// Vehicle represents a vehicle or piece of powered equipment. UsageUnit
// decides which counter the odometer feed updates: trucks track miles,
// tractors and mowers track engine hours. A vehicle tracks exactly one unit.
type Vehicle struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Kind           string             `bson:"kind" json:"kind"` // "truck", "tractor", "mower", "atv"
	Make           string             `bson:"make" json:"make"`
	Model          string             `bson:"model" json:"model"`
	Year           int                `bson:"year" json:"year"`
	UsageUnit      UsageUnit          `bson:"usage_unit" json:"usage_unit"`
	CurrentUsage   *float64           `bson:"current_usage,omitempty" json:"current_usage,omitempty"`
	UsageUpdatedAt *time.Time         `bson:"usage_updated_at,omitempty" json:"usage_updated_at,omitempty"`
	Maintenance    []MaintenanceItem  `bson:"maintenance" json:"maintenance"`
	Status         string             `bson:"status" json:"status"` // "active" or "retired"
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
