package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// RecordCompletion appends one completion record and advances the subject's
// last-completion pointer in the same call. The update is guarded so that a
// record older than the current pointer is rejected rather than rewinding it,
// and two near-simultaneous completions cannot both win. An active manual
// due date is cleared once the completion lands, unless the item has no
// recurrence and the repo is configured to keep the override in that case.
func (r *Repo) RecordCompletion(ctx context.Context, rec models.CompletionRecord) error {
	if rec.CompletedAt.IsZero() {
		return fmt.Errorf("completed_at is required")
	}

	var err error
	switch rec.SubjectKind {
	case "plant":
		err = r.completePlant(ctx, rec)
	case "vehicle":
		err = r.completeVehicleItem(ctx, rec)
	case "chore":
		err = r.completeChore(ctx, rec)
	default:
		return fmt.Errorf("unknown subject kind %q", rec.SubjectKind)
	}
	if err != nil {
		return err
	}

	rec.CreatedAt = time.Now()
	_, err = r.Completions.InsertOne(ctx, rec)
	return err
}

func (r *Repo) completePlant(ctx context.Context, rec models.CompletionRecord) error {
	objectID, err := primitive.ObjectIDFromHex(rec.SubjectID)
	if err != nil {
		return fmt.Errorf("invalid plant ID: %w", err)
	}

	var field string
	switch rec.TaskName {
	case "water":
		field = "last_watered"
	case "fertilize":
		field = "last_fertilized"
	default:
		return fmt.Errorf("unknown plant care task %q", rec.TaskName)
	}

	// The monotonicity guard rides in the filter: the update only matches
	// while the stored pointer is absent or not newer.
	filter := bson.M{
		"_id": objectID,
		"$or": []bson.M{
			{field: bson.M{"$exists": false}},
			{field: bson.M{"$lte": rec.CompletedAt}},
		},
	}
	update := bson.M{"$set": bson.M{field: rec.CompletedAt, "updated_at": time.Now()}}
	res, err := r.Plants.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrOutOfOrder(ctx, r.Plants, objectID)
	}
	return nil
}

func (r *Repo) completeVehicleItem(ctx context.Context, rec models.CompletionRecord) error {
	vehicle, err := r.FindVehicleByID(ctx, rec.SubjectID)
	if err != nil {
		return err
	}

	var item *models.MaintenanceItem
	for i := range vehicle.Maintenance {
		if vehicle.Maintenance[i].Name == rec.TaskName {
			item = &vehicle.Maintenance[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("%w: maintenance item %q", ErrNotFound, rec.TaskName)
	}

	usageTracked := (vehicle.UsageUnit == models.UnitMiles && item.FrequencyMiles > 0) ||
		(vehicle.UsageUnit == models.UnitHours && item.FrequencyHours > 0)
	if usageTracked && rec.UsageAtCompletion == nil {
		return fmt.Errorf("usage reading required to complete %q", rec.TaskName)
	}

	set := bson.M{
		"maintenance.$[item].last_completed": rec.CompletedAt,
		"updated_at":                         time.Now(),
	}
	if rec.UsageAtCompletion != nil {
		usageField := "maintenance.$[item].last_hours"
		if vehicle.UsageUnit == models.UnitMiles {
			usageField = "maintenance.$[item].last_mileage"
		}
		set[usageField] = *rec.UsageAtCompletion
	}
	update := bson.M{"$set": set}

	if item.ManualDueDate != nil {
		hasRecurrence := item.FrequencyDays > 0 || item.FrequencyMiles > 0 || item.FrequencyHours > 0
		if hasRecurrence || r.ClearOverrideWithoutRecurrence {
			update["$unset"] = bson.M{"maintenance.$[item].manual_due_date": ""}
		}
	}

	arrayFilter := bson.M{
		"item.name": rec.TaskName,
		"$or": []bson.M{
			{"item.last_completed": bson.M{"$exists": false}},
			{"item.last_completed": bson.M{"$lte": rec.CompletedAt}},
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{arrayFilter}})
	res, err := r.Vehicles.UpdateOne(ctx, bson.M{"_id": vehicle.ID}, update, opts)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrOutOfOrderCompletion
	}
	return nil
}

func (r *Repo) completeChore(ctx context.Context, rec models.CompletionRecord) error {
	objectID, err := primitive.ObjectIDFromHex(rec.SubjectID)
	if err != nil {
		return fmt.Errorf("invalid chore ID: %w", err)
	}
	res, err := r.Chores.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{
			"completed":    true,
			"completed_at": rec.CompletedAt,
			"updated_at":   time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCompletions returns a subject's completion history, newest first.
func (r *Repo) ListCompletions(ctx context.Context, subjectID string) ([]models.CompletionRecord, error) {
	opts := options.Find().SetSort(bson.M{"completed_at": -1})
	cursor, err := r.Completions.Find(ctx, bson.M{"subject_id": subjectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var recs []models.CompletionRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// missOrOutOfOrder decides why a guarded update matched nothing.
func (r *Repo) missOrOutOfOrder(ctx context.Context, coll interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}, id primitive.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrOutOfOrderCompletion
}
