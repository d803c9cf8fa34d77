// Package notify fans routed triggers out to their channels. Delivery
// mechanics for email and calendar are external; here they are transports
// that log the hand-off. The dashboard channel persists alerts for the UI.
package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/oakmoor/homestead-ops/internal/alerts"
)

// Message is one notification bound for a single channel.
type Message struct {
	Channel  alerts.Channel
	Category alerts.Category
	Severity alerts.Severity
	Subject  string
	Body     string
}

// Transport delivers messages on one channel.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher routes each trigger through the router and hands the resulting
// messages to the channel transports. A failed send is logged and does not
// stop the rest of the batch.
type Dispatcher struct {
	router     *alerts.Router
	transports map[alerts.Channel]Transport
}

// NewDispatcher wires a router to its channel transports.
func NewDispatcher(router *alerts.Router, transports map[alerts.Channel]Transport) *Dispatcher {
	return &Dispatcher{router: router, transports: transports}
}

// Dispatch routes and sends a batch of triggers.
func (d *Dispatcher) Dispatch(ctx context.Context, triggers []alerts.Trigger) {
	for _, trig := range triggers {
		for _, ch := range d.router.Route(trig.Category, trig.Severity) {
			transport, ok := d.transports[ch]
			if !ok {
				log.WithField("channel", ch).Warn("no transport registered for channel")
				continue
			}
			msg := Message{
				Channel:  ch,
				Category: trig.Category,
				Severity: trig.Severity,
				Subject:  trig.Subject,
				Body:     trig.Message,
			}
			if err := transport.Send(ctx, msg); err != nil {
				log.WithFields(log.Fields{
					"channel":  ch,
					"category": trig.Category,
				}).WithError(err).Warn("notification send failed")
			}
		}
	}
}

// LogTransport stands in for an external delivery mechanism (email,
// calendar): it records the hand-off and nothing more.
type LogTransport struct {
	Name alerts.Channel
}

// Send logs the message at a level matching its severity.
func (t LogTransport) Send(_ context.Context, msg Message) error {
	entry := log.WithFields(log.Fields{
		"channel":  t.Name,
		"category": msg.Category,
		"severity": msg.Severity,
		"subject":  msg.Subject,
	})
	if msg.Severity == alerts.SeverityCritical {
		entry.Warn(msg.Body)
	} else {
		entry.Info(msg.Body)
	}
	return nil
}
