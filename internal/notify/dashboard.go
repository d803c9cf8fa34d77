package notify

import (
	"context"
	"time"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// AlertStore persists dashboard alerts. Implemented by the mongo alert
// collection; tests supply an in-memory fake.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert models.Alert) error
}

// DashboardTransport writes dashboard-channel notifications to the alert
// store so the UI can list and acknowledge them.
type DashboardTransport struct {
	Store AlertStore
}

func (t *DashboardTransport) Send(ctx context.Context, msg Message) error {
	return t.Store.InsertAlert(ctx, models.Alert{
		Category:  string(msg.Category),
		Severity:  string(msg.Severity),
		SubjectID: msg.Subject,
		Message:   msg.Body,
		CreatedAt: time.Now(),
	})
}
