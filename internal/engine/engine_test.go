package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oakmoor/homestead-ops/internal/alerts"
	"github.com/oakmoor/homestead-ops/internal/models"
	"github.com/oakmoor/homestead-ops/internal/notify"
	"github.com/oakmoor/homestead-ops/internal/schedule"
)

type fakeSubjects struct {
	plants   []models.Plant
	vehicles []models.Vehicle
	chores   []models.Chore
}

func (f *fakeSubjects) ListPlants(context.Context) ([]models.Plant, error)     { return f.plants, nil }
func (f *fakeSubjects) ListVehicles(context.Context) ([]models.Vehicle, error) { return f.vehicles, nil }
func (f *fakeSubjects) ListChores(context.Context) ([]models.Chore, error)     { return f.chores, nil }

type captureTransport struct {
	sent []notify.Message
}

func (c *captureTransport) Send(_ context.Context, msg notify.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func ptr[T any](v T) *T { return &v }

func newEngine(subs *fakeSubjects, channels map[alerts.Category][]alerts.Channel, now time.Time) (*Engine, *captureTransport) {
	dash := &captureTransport{}
	d := notify.NewDispatcher(alerts.NewRouter(channels), map[alerts.Channel]notify.Transport{
		alerts.ChannelDashboard: dash,
	})
	return &Engine{
		Subjects:          subs,
		Calc:              schedule.NewCalculator(3),
		Triager:           schedule.Triager{Loc: time.UTC},
		Dispatcher:        d,
		ColdBufferDegrees: 5,
		Now:               func() time.Time { return now },
	}, dash
}

func TestSnapshot_EndToEnd(t *testing.T) {
	now := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC) // summer
	wateredLongAgo := now.AddDate(0, 0, -9)
	serviced := now.AddDate(0, 0, -10)
	choreDue := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)

	subs := &fakeSubjects{
		plants: []models.Plant{
			{
				ID: primitive.NewObjectID(), Name: "Tomatoes",
				WaterSchedule: "summer:3,winter:10",
				LastWatered:   &wateredLongAgo,
				CreatedAt:     now.AddDate(0, -4, 0),
			},
			{
				ID: primitive.NewObjectID(), Name: "Pasture",
				WaterSchedule: "summer:3",
				LastWatered:   &wateredLongAgo,
				ReceivesRain:  true,
				CreatedAt:     now.AddDate(-1, 0, 0),
			},
		},
		vehicles: []models.Vehicle{
			{
				ID: primitive.NewObjectID(), Name: "Farm truck",
				UsageUnit:    models.UnitMiles,
				CurrentUsage: ptr(45200.0),
				CreatedAt:    now.AddDate(-3, 0, 0),
				Maintenance: []models.MaintenanceItem{
					{
						Name:           "oil_change",
						FrequencyMiles: 5000,
						FrequencyDays:  180,
						LastCompleted:  &serviced,
						LastMileage:    ptr(40000.0),
					},
				},
			},
		},
		chores: []models.Chore{
			{
				ID: primitive.NewObjectID(), Title: "Pick up feed",
				Kind: models.ChoreKindTask, DueDate: &choreDue, DueTime: "14:00",
				CreatedAt: now.AddDate(0, 0, -3),
			},
		},
	}

	eng, _ := newEngine(subs, nil, now)
	buckets, err := eng.Snapshot(context.Background())
	require.NoError(t, err)

	overdueNames := map[string]bool{}
	for _, o := range buckets.Overdue {
		overdueNames[o.Title+"/"+o.TaskName] = true
	}
	assert.True(t, overdueNames["Tomatoes/water"], "9 days since watering on a 3-day summer schedule")
	assert.True(t, overdueNames["Farm truck/oil_change"], "mileage condition fires")
	assert.False(t, overdueNames["Pasture/water"], "rain-tracked plants never go overdue on water")

	todayNames := map[string]bool{}
	for _, o := range buckets.Today {
		todayNames[o.Title] = true
	}
	assert.True(t, todayNames["Pick up feed"], "chore due this afternoon is on today's list")
	for _, o := range buckets.Overdue {
		assert.NotEqual(t, "Pick up feed", o.Title, "due at 14:00 is not overdue at 10:00")
	}

	// Idempotent over identical inputs.
	again, err := eng.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, buckets, again)
}

func TestRunCycle_RoutesOverdueAndCold(t *testing.T) {
	now := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC) // winter
	watered := now.AddDate(0, 0, -20)

	subs := &fakeSubjects{
		plants: []models.Plant{
			{
				ID: primitive.NewObjectID(), Name: "Citrus",
				WaterSchedule: "winter:10",
				LastWatered:   &watered,
				MinTemp:       ptr(35.0),
				CreatedAt:     now.AddDate(-1, 0, 0),
			},
		},
	}
	eng, dash := newEngine(subs, map[alerts.Category][]alerts.Channel{
		alerts.CategoryPlantCare:      {alerts.ChannelDashboard},
		alerts.CategoryColdProtection: {alerts.ChannelDashboard},
	}, now)
	eng.SetForecastLow(28)

	eng.RunCycle(context.Background())

	require.Len(t, dash.sent, 2)
	cats := []alerts.Category{dash.sent[0].Category, dash.sent[1].Category}
	assert.Contains(t, cats, alerts.CategoryPlantCare)
	assert.Contains(t, cats, alerts.CategoryColdProtection)

	// Second cycle inside the dedup window stays quiet.
	eng.RunCycle(context.Background())
	assert.Len(t, dash.sent, 2)
}

func TestRunCycle_UnmappedCategoriesStaySilent(t *testing.T) {
	now := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	watered := now.AddDate(0, 0, -20)
	subs := &fakeSubjects{
		plants: []models.Plant{
			{
				ID: primitive.NewObjectID(), Name: "Citrus",
				WaterSchedule: "winter:10",
				LastWatered:   &watered,
				CreatedAt:     now.AddDate(-1, 0, 0),
			},
		},
	}
	eng, dash := newEngine(subs, nil, now)

	eng.RunCycle(context.Background())
	assert.Empty(t, dash.sent, "no category mapping means nothing fires")
}

func TestRunCycle_StorageTrigger(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	eng, dash := newEngine(&fakeSubjects{}, map[alerts.Category][]alerts.Channel{
		alerts.CategoryStorage: {alerts.ChannelDashboard},
	}, now)
	eng.StorageWarnPercent = 80
	eng.StorageCritPercent = 95
	eng.StorageUsedPercent = func() (float64, error) { return 97, nil }

	eng.RunCycle(context.Background())
	require.Len(t, dash.sent, 1)
	assert.Equal(t, alerts.SeverityCritical, dash.sent[0].Severity)
}
