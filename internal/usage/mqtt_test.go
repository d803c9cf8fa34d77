package usage

import (
	"testing"
)

func TestVehicleIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"homestead/vehicles/64f1a2/usage", "64f1a2"},
		{"vehicles/abc123/usage", "abc123"},
		{"homestead/plants/p1/usage", ""},
		{"usage", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := VehicleIDFromTopic(tt.topic); got != tt.want {
			t.Errorf("VehicleIDFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
