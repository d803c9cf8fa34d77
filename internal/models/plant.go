package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plant represents a tracked plant or bed.
//
// WaterSchedule and FertilizeSchedule are season-keyed interval strings in the
// form "summer:3,winter:10" (days between care per season). They are parsed
// once at the adapter boundary, not at each evaluation site.
type Plant struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Species           string             `bson:"species" json:"species"`
	Location          string             `bson:"location" json:"location"` // "greenhouse", "orchard", "bed 3"
	WaterSchedule     string             `bson:"water_schedule" json:"water_schedule"`
	FertilizeSchedule string             `bson:"fertilize_schedule" json:"fertilize_schedule"`
	LastWatered       *time.Time         `bson:"last_watered,omitempty" json:"last_watered,omitempty"`
	LastFertilized    *time.Time         `bson:"last_fertilized,omitempty" json:"last_fertilized,omitempty"`
	ReceivesRain      bool               `bson:"receives_rain" json:"receives_rain"`
	HasSprinkler      bool               `bson:"has_sprinkler" json:"has_sprinkler"`
	MinTemp           *float64           `bson:"min_temp,omitempty" json:"min_temp,omitempty"` // °F; cold protection below this
	Status            string             `bson:"status" json:"status"`                         // "active" or "dormant"
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// AutoWatered reports whether watering is handled without human action.
// Auto-watered plants never go overdue on water.
func (p *Plant) AutoWatered() bool {
	return p.ReceivesRain || p.HasSprinkler
}
