package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert is a dashboard-channel notification persisted for the UI to list.
// Email and calendar deliveries are handed to external transports and leave
// no record here.
type Alert struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category     string             `bson:"category" json:"category"`
	Severity     string             `bson:"severity" json:"severity"`
	SubjectID    string             `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	Message      string             `bson:"message" json:"message"`
	Acknowledged bool               `bson:"acknowledged" json:"acknowledged"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
