package db

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oakmoor/homestead-ops/internal/models"
)

func TestRepo_NilCollections(t *testing.T) {
	repo := NewRepo(Collections{}, true)
	ctx := context.Background()

	if _, err := repo.ListPlants(ctx); err == nil {
		t.Error("expected error when plants collection is nil")
	}
	if _, err := repo.ListVehicles(ctx); err == nil {
		t.Error("expected error when vehicles collection is nil")
	}
	if _, err := repo.ListChores(ctx); err == nil {
		t.Error("expected error when chores collection is nil")
	}
	if err := repo.InsertAlert(ctx, models.Alert{}); err == nil {
		t.Error("expected error when alerts collection is nil")
	}
}

func TestRecordCompletion_Validation(t *testing.T) {
	repo := NewRepo(Collections{}, true)
	ctx := context.Background()

	err := repo.RecordCompletion(ctx, models.CompletionRecord{SubjectKind: "plant", TaskName: "water"})
	if err == nil {
		t.Error("expected error for zero completed_at")
	}

	err = repo.RecordCompletion(ctx, models.CompletionRecord{
		SubjectKind: "goat", TaskName: "milk", CompletedAt: time.Now(),
	})
	if err == nil {
		t.Error("expected error for unknown subject kind")
	}

	err = repo.RecordCompletion(ctx, models.CompletionRecord{
		SubjectID: "not-an-id", SubjectKind: "plant", TaskName: "water", CompletedAt: time.Now(),
	})
	if err == nil {
		t.Error("expected error for malformed subject id")
	}

	err = repo.RecordCompletion(ctx, models.CompletionRecord{
		SubjectID: primitive.NewObjectID().Hex(), SubjectKind: "plant", TaskName: "prune", CompletedAt: time.Now(),
	})
	if err == nil {
		t.Error("expected error for unknown plant care task")
	}
}

// Integration test (requires running MongoDB)
func TestRecordCompletion_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
		return
	}
	client, err := ConnectMongo(uri)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "homestead_test"
	}
	repo := NewRepo(NewCollections(client, dbName), true)
	ctx := context.Background()

	completed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mileage := 40000.0
	manual := completed.AddDate(0, 3, 0)
	vehicle := models.Vehicle{
		ID:        primitive.NewObjectID(),
		Name:      "Test truck",
		UsageUnit: models.UnitMiles,
		Status:    "active",
		Maintenance: []models.MaintenanceItem{
			{Name: "oil_change", FrequencyMiles: 5000, FrequencyDays: 180, ManualDueDate: &manual},
		},
		CreatedAt: completed.AddDate(-1, 0, 0),
	}
	if _, err := repo.Vehicles.InsertOne(ctx, vehicle); err != nil {
		t.Fatalf("insert vehicle: %v", err)
	}
	defer repo.Vehicles.DeleteMany(ctx, map[string]interface{}{"_id": vehicle.ID})

	rec := models.CompletionRecord{
		SubjectID:         vehicle.ID.Hex(),
		SubjectKind:       "vehicle",
		TaskName:          "oil_change",
		CompletedAt:       completed,
		UsageAtCompletion: &mileage,
	}
	if err := repo.RecordCompletion(ctx, rec); err != nil {
		t.Fatalf("record completion: %v", err)
	}

	got, err := repo.FindVehicleByID(ctx, vehicle.ID.Hex())
	if err != nil {
		t.Fatalf("find vehicle: %v", err)
	}
	item := got.Maintenance[0]
	if item.LastCompleted == nil || !item.LastCompleted.Equal(completed) {
		t.Errorf("last_completed not advanced: %v", item.LastCompleted)
	}
	if item.LastMileage == nil || *item.LastMileage != mileage {
		t.Errorf("last_mileage not recorded: %v", item.LastMileage)
	}
	if item.ManualDueDate != nil {
		t.Error("manual_due_date should be cleared by completion")
	}

	// An older completion must be rejected, not rewind the pointer.
	stale := rec
	stale.CompletedAt = completed.AddDate(0, 0, -10)
	if err := repo.RecordCompletion(ctx, stale); err != ErrOutOfOrderCompletion {
		t.Errorf("expected ErrOutOfOrderCompletion, got %v", err)
	}
}
