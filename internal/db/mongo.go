package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(uri string) (*mongo.Client, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles the per-entity collections the repositories sit on.
type Collections struct {
	Plants      *mongo.Collection
	Vehicles    *mongo.Collection
	Chores      *mongo.Collection
	Completions *mongo.Collection
	Alerts      *mongo.Collection
	Users       *mongo.Collection
}

// NewCollections maps the standard collection names in database name.
func NewCollections(client *mongo.Client, name string) Collections {
	d := client.Database(name)
	return Collections{
		Plants:      d.Collection("plants"),
		Vehicles:    d.Collection("vehicles"),
		Chores:      d.Collection("chores"),
		Completions: d.Collection("completions"),
		Alerts:      d.Collection("alerts"),
		Users:       d.Collection("users"),
	}
}
