// Package usage ingests odometer and hour-meter readings. Readings arrive on
// an MQTT topic per vehicle and update the stored current usage independently
// of maintenance completions.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Store is the write side the feed lands readings on.
type Store interface {
	UpdateVehicleUsage(ctx context.Context, id string, reading float64, at time.Time) error
}

// Reading is the wire shape published to homestead/vehicles/<id>/usage.
type Reading struct {
	VehicleID string    `json:"vehicle_id,omitempty"`
	Reading   float64   `json:"reading"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Feed is a running MQTT subscription.
type Feed struct {
	client mqtt.Client
	store  Store
	topic  string
}

// Start connects to the broker and subscribes to the usage topic.
func Start(broker, clientID, topic string, store Store) (*Feed, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	f := &Feed{client: client, store: store, topic: topic}
	if token := client.Subscribe(topic, 1, f.handle); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, token.Error())
	}
	log.WithFields(log.Fields{"broker": broker, "topic": topic}).Info("usage feed connected")
	return f, nil
}

func (f *Feed) handle(_ mqtt.Client, msg mqtt.Message) {
	var r Reading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		log.WithField("topic", msg.Topic()).WithError(err).Warn("dropping malformed usage reading")
		return
	}
	if r.VehicleID == "" {
		r.VehicleID = VehicleIDFromTopic(msg.Topic())
	}
	if r.VehicleID == "" || r.Reading <= 0 {
		log.WithField("topic", msg.Topic()).Warn("dropping usage reading without vehicle or value")
		return
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.store.UpdateVehicleUsage(ctx, r.VehicleID, r.Reading, r.Timestamp); err != nil {
		log.WithFields(log.Fields{"vehicle_id": r.VehicleID}).WithError(err).Warn("usage update failed")
		return
	}
	log.WithFields(log.Fields{"vehicle_id": r.VehicleID, "reading": r.Reading}).Debug("usage reading stored")
}

// Stop unsubscribes and disconnects.
func (f *Feed) Stop() {
	f.client.Unsubscribe(f.topic)
	f.client.Disconnect(250)
}

// VehicleIDFromTopic pulls the vehicle segment out of
// "homestead/vehicles/<id>/usage"-shaped topics.
func VehicleIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return ""
	}
	for i, p := range parts {
		if p == "vehicles" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
