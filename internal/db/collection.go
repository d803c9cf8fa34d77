package db

import (
	"context"
	"errors"

	"github.com/oakmoor/homestead-ops/internal/models"
)

var (
	// ErrNotFound is returned when a subject or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOutOfOrderCompletion is returned when a completion would rewind
	// the subject's last-completion pointer. Completions are monotone by
	// completed_at.
	ErrOutOfOrderCompletion = errors.New("completion predates last completion")
)

// SubjectStore is the read side the evaluation cycle and dashboard use.
type SubjectStore interface {
	ListPlants(ctx context.Context) ([]models.Plant, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	ListChores(ctx context.Context) ([]models.Chore, error)
}

// SubjectWriter is the write side the subject API uses. Validation happens in
// the handlers; the writer only persists.
type SubjectWriter interface {
	InsertPlant(ctx context.Context, p models.Plant) (string, error)
	InsertVehicle(ctx context.Context, v models.Vehicle) (string, error)
	InsertChore(ctx context.Context, c models.Chore) (string, error)
}

// CompletionStore records finished occurrences. RecordCompletion must
// atomically advance the subject's last-completion pointer, reject
// out-of-order records, and clear an exercised manual override.
type CompletionStore interface {
	RecordCompletion(ctx context.Context, rec models.CompletionRecord) error
	ListCompletions(ctx context.Context, subjectID string) ([]models.CompletionRecord, error)
}

// AlertStore persists and lists dashboard alerts.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert models.Alert) error
	ListAlerts(ctx context.Context, unacknowledgedOnly bool) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
