package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oakmoor/homestead-ops/internal/models"
)

// Repo implements the subject, completion, and alert stores on the mongo
// collections. ClearOverrideWithoutRecurrence controls whether recording a
// completion clears a manual due date even when the item has no recurrence
// left to take over.
type Repo struct {
	Collections
	ClearOverrideWithoutRecurrence bool
}

// NewRepo wraps collections in a repository.
func NewRepo(c Collections, clearOverrideWithoutRecurrence bool) *Repo {
	return &Repo{Collections: c, ClearOverrideWithoutRecurrence: clearOverrideWithoutRecurrence}
}

// ListPlants returns all active plants.
func (r *Repo) ListPlants(ctx context.Context) ([]models.Plant, error) {
	if r.Plants == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := r.Plants.Find(ctx, bson.M{"status": bson.M{"$ne": "dormant"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var plants []models.Plant
	if err := cursor.All(ctx, &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// ListVehicles returns all non-retired vehicles.
func (r *Repo) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	if r.Vehicles == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := r.Vehicles.Find(ctx, bson.M{"status": bson.M{"$ne": "retired"}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListChores returns chores that are open or were completed within the last
// day, so the triage engine can keep today's finished items visible.
func (r *Repo) ListChores(ctx context.Context) ([]models.Chore, error) {
	if r.Chores == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cutoff := time.Now().AddDate(0, 0, -1)
	filter := bson.M{"$or": []bson.M{
		{"completed": false},
		{"completed_at": bson.M{"$gte": cutoff}},
	}}
	cursor, err := r.Chores.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var chores []models.Chore
	if err := cursor.All(ctx, &chores); err != nil {
		return nil, err
	}
	return chores, nil
}

// InsertPlant persists a new plant and returns its ID.
func (r *Repo) InsertPlant(ctx context.Context, p models.Plant) (string, error) {
	if r.Plants == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = "active"
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.Plants.InsertOne(ctx, p); err != nil {
		return "", err
	}
	return p.ID.Hex(), nil
}

// InsertVehicle persists a new vehicle and returns its ID.
func (r *Repo) InsertVehicle(ctx context.Context, v models.Vehicle) (string, error) {
	if r.Vehicles == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if v.Status == "" {
		v.Status = "active"
	}
	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := r.Vehicles.InsertOne(ctx, v); err != nil {
		return "", err
	}
	return v.ID.Hex(), nil
}

// InsertChore persists a new chore and returns its ID.
func (r *Repo) InsertChore(ctx context.Context, c models.Chore) (string, error) {
	if r.Chores == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Kind == "" {
		c.Kind = models.ChoreKindTask
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.Chores.InsertOne(ctx, c); err != nil {
		return "", err
	}
	return c.ID.Hex(), nil
}

// FindVehicleByID finds a vehicle by its ID.
func (r *Repo) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	var vehicle models.Vehicle
	err = r.Vehicles.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicleUsage records a fresh odometer/hour-meter reading. Readings
// arrive independently of completions (MQTT feed or manual entry).
func (r *Repo) UpdateVehicleUsage(ctx context.Context, id string, reading float64, at time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}
	res, err := r.Vehicles.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{
			"current_usage":    reading,
			"usage_updated_at": at,
			"updated_at":       time.Now(),
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

// InsertAlert persists a dashboard alert.
func (r *Repo) InsertAlert(ctx context.Context, alert models.Alert) error {
	if r.Alerts == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	_, err := r.Alerts.InsertOne(ctx, alert)
	return err
}

// ListAlerts returns alerts newest first.
func (r *Repo) ListAlerts(ctx context.Context, unacknowledgedOnly bool) ([]models.Alert, error) {
	filter := bson.M{}
	if unacknowledgedOnly {
		filter["acknowledged"] = false
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Alerts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// AcknowledgeAlert marks an alert as seen.
func (r *Repo) AcknowledgeAlert(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid alert ID: %w", err)
	}
	res, err := r.Alerts.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"acknowledged": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
