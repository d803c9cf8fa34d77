package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oakmoor/homestead-ops/internal/models"
)

func TestParseSeasonSchedule(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    SeasonSchedule
		wantErr bool
	}{
		{"two seasons", "summer:3,winter:10", SeasonSchedule{SeasonSummer: 3, SeasonWinter: 10}, false},
		{"all seasons with spaces", "spring:5, summer:3, fall:7, winter:14",
			SeasonSchedule{SeasonSpring: 5, SeasonSummer: 3, SeasonFall: 7, SeasonWinter: 14}, false},
		{"empty", "", SeasonSchedule{}, false},
		{"unknown season", "monsoon:4", nil, true},
		{"missing colon", "summer3", nil, true},
		{"non-numeric", "summer:three", nil, true},
		{"zero interval", "summer:0", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeasonSchedule(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, SeasonSummer, SeasonOf(time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonWinter, SeasonOf(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonWinter, SeasonOf(time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonSpring, SeasonOf(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonFall, SeasonOf(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPlantInputs(t *testing.T) {
	summer := time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC)
	watered := summer.AddDate(0, 0, -2)
	p := &models.Plant{
		ID:            primitive.NewObjectID(),
		Name:          "Tomatoes",
		WaterSchedule: "summer:3,winter:10",
		LastWatered:   &watered,
		ReceivesRain:  true,
		CreatedAt:     summer.AddDate(0, -3, 0),
	}

	inputs := PlantInputs(p, summer)
	require.Len(t, inputs, 2)

	water := inputs[0]
	assert.Equal(t, TaskWater, water.TaskName)
	assert.Equal(t, 3, water.Rule.IntervalDays, "summer interval applies in July")
	assert.True(t, water.SuppressOverdue, "rain-tracked plants never flag water")
	require.NotNil(t, water.LastCompletion)
	assert.Equal(t, watered, water.LastCompletion.CompletedAt)

	fertilize := inputs[1]
	assert.Equal(t, TaskFertilize, fertilize.TaskName)
	assert.True(t, fertilize.Rule.Unscheduled(), "no fertilize schedule set")
	assert.False(t, fertilize.SuppressOverdue)
}

func TestPlantInputs_SeasonGapAndBadData(t *testing.T) {
	winter := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	p := &models.Plant{ID: primitive.NewObjectID(), Name: "Basil", WaterSchedule: "summer:2"}
	inputs := PlantInputs(p, winter)
	assert.True(t, inputs[0].Rule.Unscheduled(), "no winter entry means unscheduled in winter")

	p = &models.Plant{ID: primitive.NewObjectID(), Name: "Mint", WaterSchedule: "not a schedule"}
	inputs = PlantInputs(p, winter)
	assert.True(t, inputs[0].Rule.Unscheduled(), "unparsable schedule degrades to unscheduled")
}

func TestVehicleInputs(t *testing.T) {
	completed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mileage := 40000.0
	current := 45200.0
	manual := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	v := &models.Vehicle{
		ID:           primitive.NewObjectID(),
		Name:         "Farm truck",
		UsageUnit:    models.UnitMiles,
		CurrentUsage: &current,
		CreatedAt:    completed.AddDate(-2, 0, 0),
		Maintenance: []models.MaintenanceItem{
			{
				Name:           "oil_change",
				FrequencyMiles: 5000,
				FrequencyDays:  180,
				LastCompleted:  &completed,
				LastMileage:    &mileage,
			},
			{
				Name:          "inspection",
				ManualDueDate: &manual,
			},
		},
	}

	inputs := VehicleInputs(v)
	require.Len(t, inputs, 2)

	oil := inputs[0]
	assert.Equal(t, 180, oil.Rule.IntervalDays)
	require.NotNil(t, oil.Rule.IntervalUsage)
	assert.Equal(t, models.UnitMiles, oil.Rule.IntervalUsage.Unit)
	assert.Equal(t, float64(5000), oil.Rule.IntervalUsage.Amount)
	require.NotNil(t, oil.LastCompletion)
	require.NotNil(t, oil.LastCompletion.UsageAtCompletion)
	assert.Equal(t, mileage, *oil.LastCompletion.UsageAtCompletion)
	require.NotNil(t, oil.CurrentUsage)
	assert.Equal(t, current, *oil.CurrentUsage)

	insp := inputs[1]
	require.NotNil(t, insp.Rule.ManualDueDate)
	assert.Equal(t, manual, *insp.Rule.ManualDueDate)
	assert.Nil(t, insp.LastCompletion)
}

func TestVehicleInputs_HourTrackedIgnoresMileFrequency(t *testing.T) {
	v := &models.Vehicle{
		ID:        primitive.NewObjectID(),
		Name:      "Tractor",
		UsageUnit: models.UnitHours,
		Maintenance: []models.MaintenanceItem{
			{Name: "oil_change", FrequencyMiles: 5000, FrequencyHours: 100},
		},
	}
	inputs := VehicleInputs(v)
	require.Len(t, inputs, 1)
	require.NotNil(t, inputs[0].Rule.IntervalUsage)
	assert.Equal(t, models.UnitHours, inputs[0].Rule.IntervalUsage.Unit)
	assert.Equal(t, float64(100), inputs[0].Rule.IntervalUsage.Amount)
}

func TestChoreInput(t *testing.T) {
	loc := time.UTC
	due := time.Date(2026, 8, 25, 0, 0, 0, 0, loc)
	c := &models.Chore{
		ID:      primitive.NewObjectID(),
		Title:   "Pick up feed",
		Kind:    models.ChoreKindTask,
		DueDate: &due,
		DueTime: "14:00",
	}

	in := ChoreInput(c, loc)
	require.NotNil(t, in.DueAt)
	assert.Equal(t, time.Date(2026, 8, 25, 14, 0, 0, 0, loc), *in.DueAt)
	require.NotNil(t, in.Rule.ManualDueDate)
	assert.False(t, in.Event)

	event := &models.Chore{ID: primitive.NewObjectID(), Title: "Market day", Kind: models.ChoreKindEvent, DueDate: &due}
	in = ChoreInput(event, loc)
	assert.True(t, in.Event)
	require.NotNil(t, in.DueAt, "all-day chores are due at end of day")
	assert.Equal(t, 23, in.DueAt.Hour())

	someday := &models.Chore{ID: primitive.NewObjectID(), Title: "Someday", Kind: models.ChoreKindTask}
	in = ChoreInput(someday, loc)
	assert.Nil(t, in.DueAt)
	assert.True(t, in.Rule.Unscheduled())
}
