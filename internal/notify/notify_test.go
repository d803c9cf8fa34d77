package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmoor/homestead-ops/internal/alerts"
	"github.com/oakmoor/homestead-ops/internal/models"
)

type captureTransport struct {
	sent []Message
	err  error
}

func (c *captureTransport) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func TestDispatcher_RoutesPerCategory(t *testing.T) {
	router := alerts.NewRouter(map[alerts.Category][]alerts.Channel{
		alerts.CategoryPlantCare:      {alerts.ChannelDashboard, alerts.ChannelEmail},
		alerts.CategoryColdProtection: {alerts.ChannelDashboard},
	})
	dash := &captureTransport{}
	email := &captureTransport{}
	d := NewDispatcher(router, map[alerts.Channel]Transport{
		alerts.ChannelDashboard: dash,
		alerts.ChannelEmail:     email,
	})

	d.Dispatch(context.Background(), []alerts.Trigger{
		{Category: alerts.CategoryPlantCare, Severity: alerts.SeverityWarning, Message: "water overdue"},
		{Category: alerts.CategoryColdProtection, Severity: alerts.SeverityCritical, Message: "frost tonight"},
		{Category: alerts.CategoryStorage, Severity: alerts.SeverityCritical, Message: "disk full"},
	})

	assert.Len(t, dash.sent, 2)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "water overdue", email.sent[0].Body)
	// Storage is unmapped: nothing fires anywhere, even at critical.
	for _, m := range append(dash.sent, email.sent...) {
		assert.NotEqual(t, alerts.CategoryStorage, m.Category)
	}
}

func TestDispatcher_SendFailureDoesNotStopBatch(t *testing.T) {
	router := alerts.NewRouter(map[alerts.Category][]alerts.Channel{
		alerts.CategoryChores: {alerts.ChannelEmail, alerts.ChannelDashboard},
	})
	email := &captureTransport{err: errors.New("smtp down")}
	dash := &captureTransport{}
	d := NewDispatcher(router, map[alerts.Channel]Transport{
		alerts.ChannelEmail:     email,
		alerts.ChannelDashboard: dash,
	})

	d.Dispatch(context.Background(), []alerts.Trigger{
		{Category: alerts.CategoryChores, Severity: alerts.SeverityWarning, Message: "fence"},
	})

	assert.Len(t, email.sent, 1)
	assert.Len(t, dash.sent, 1, "dashboard still delivered after email failure")
}

type memAlertStore struct {
	alerts []models.Alert
}

func (m *memAlertStore) InsertAlert(_ context.Context, a models.Alert) error {
	m.alerts = append(m.alerts, a)
	return nil
}

func TestDashboardTransport_PersistsAlert(t *testing.T) {
	store := &memAlertStore{}
	tr := &DashboardTransport{Store: store}

	err := tr.Send(context.Background(), Message{
		Channel:  alerts.ChannelDashboard,
		Category: alerts.CategoryVehicleMaintenance,
		Severity: alerts.SeverityWarning,
		Subject:  "v1",
		Body:     "oil change overdue",
	})
	require.NoError(t, err)
	require.Len(t, store.alerts, 1)
	assert.Equal(t, "vehicle_maintenance", store.alerts[0].Category)
	assert.Equal(t, "oil change overdue", store.alerts[0].Message)
	assert.False(t, store.alerts[0].Acknowledged)
	assert.False(t, store.alerts[0].CreatedAt.IsZero())
}
