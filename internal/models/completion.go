package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionRecord is one finished occurrence of a recurring task. Records are
// immutable once written; a newer record supersedes the previous one as the
// subject's "last completion", but history is retained for reporting.
type CompletionRecord struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubjectID         string             `bson:"subject_id" json:"subject_id"`
	SubjectKind       string             `bson:"subject_kind" json:"subject_kind"`
	TaskName          string             `bson:"task_name" json:"task_name"`
	CompletedAt       time.Time          `bson:"completed_at" json:"completed_at"`
	UsageAtCompletion *float64           `bson:"usage_at_completion,omitempty" json:"usage_at_completion,omitempty"`
	Cost              float64            `bson:"cost,omitempty" json:"cost,omitempty"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}
