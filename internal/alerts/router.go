// Package alerts decides which notification channels fire for a triggered
// condition. Threshold logic lives in the evaluator; the router itself only
// selects channels from per-category configuration.
package alerts

import (
	"fmt"
	"strings"
)

// Channel is a notification destination.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelEmail     Channel = "email"
	ChannelCalendar  Channel = "calendar"
)

// Severity grades a trigger.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category names a class of trigger with its own channel configuration.
type Category string

const (
	CategoryPlantCare          Category = "plant_care"
	CategoryVehicleMaintenance Category = "vehicle_maintenance"
	CategoryChores             Category = "chores"
	CategoryColdProtection     Category = "cold_protection"
	CategoryStorage            Category = "storage"
)

// ParseChannelList parses a comma-joined channel string ("dashboard,email")
// into channels. Unknown channel names are errors so a typo in config fails
// loudly at parse time instead of silently dropping notifications.
func ParseChannelList(s string) ([]Channel, error) {
	var out []Channel
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		ch := Channel(part)
		switch ch {
		case ChannelDashboard, ChannelEmail, ChannelCalendar:
			out = append(out, ch)
		default:
			return nil, fmt.Errorf("unknown notification channel %q", part)
		}
	}
	return out, nil
}

// Router maps (category, severity) to a channel set. Absence of a category
// mapping means no notification fires for that category: fail-closed.
type Router struct {
	channels map[Category][]Channel
}

// NewRouter builds a router from parsed per-category channel sets.
func NewRouter(channels map[Category][]Channel) *Router {
	m := make(map[Category][]Channel, len(channels))
	for cat, chs := range channels {
		m[cat] = append([]Channel(nil), chs...)
	}
	return &Router{channels: m}
}

// Route returns the channels configured for category. Severity does not widen
// the set: a category mapped to "dashboard" only never produces email, even
// at critical severity.
func (r *Router) Route(category Category, severity Severity) []Channel {
	chs, ok := r.channels[category]
	if !ok {
		return nil
	}
	return append([]Channel(nil), chs...)
}
