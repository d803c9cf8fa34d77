package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// MaintenanceItem mirrors the API shape for a recurring service task.
type MaintenanceItem struct {
	Name           string  `json:"name"`
	FrequencyMiles float64 `json:"frequency_miles,omitempty"`
	FrequencyHours float64 `json:"frequency_hours,omitempty"`
	FrequencyDays  int     `json:"frequency_days,omitempty"`
}

// Vehicle mirrors the API shape for vehicle creation.
type Vehicle struct {
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Make        string            `json:"make"`
	Model       string            `json:"model"`
	Year        int               `json:"year"`
	UsageUnit   string            `json:"usage_unit"`
	Maintenance []MaintenanceItem `json:"maintenance"`
	Status      string            `json:"status"`
}

// UsageReading is one odometer or hour-meter report.
type UsageReading struct {
	VehicleID  string    `json:"vehicle_id"`
	Reading    float64   `json:"reading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// kinds maps each equipment kind to its usage unit and a plausible
// accumulation rate per simulated day.
var kinds = map[string]struct {
	unit       string
	ratePerDay float64
}{
	"truck":   {unit: "miles", ratePerDay: 40},
	"atv":     {unit: "miles", ratePerDay: 8},
	"tractor": {unit: "hours", ratePerDay: 2.5},
	"mower":   {unit: "hours", ratePerDay: 1.2},
}

var makes = map[string][]string{
	"truck":   {"Ford", "Chevrolet", "Ram"},
	"atv":     {"Polaris", "Honda", "Yamaha"},
	"tractor": {"John Deere", "Kubota", "New Holland"},
	"mower":   {"John Deere", "Husqvarna", "Toro"},
}

var maintenanceByKind = map[string][]MaintenanceItem{
	"truck": {
		{Name: "oil_change", FrequencyMiles: 5000, FrequencyDays: 180},
		{Name: "tire_rotation", FrequencyMiles: 7500},
		{Name: "inspection", FrequencyDays: 365},
	},
	"atv": {
		{Name: "oil_change", FrequencyMiles: 1000, FrequencyDays: 180},
	},
	"tractor": {
		{Name: "oil_change", FrequencyHours: 100, FrequencyDays: 365},
		{Name: "hydraulic_filter", FrequencyHours: 400},
	},
	"mower": {
		{Name: "oil_change", FrequencyHours: 50},
		{Name: "blade_sharpen", FrequencyHours: 25},
	},
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func createVehicle(apiURL string, n int) (*VehicleState, error) {
	kindNames := []string{"truck", "atv", "tractor", "mower"}
	kind := kindNames[rand.Intn(len(kindNames))]
	spec := kinds[kind]
	mk := makes[kind][rand.Intn(len(makes[kind]))]

	vehicle := Vehicle{
		Name:        fmt.Sprintf("%s %d", mk, n),
		Kind:        kind,
		Make:        mk,
		Year:        2012 + rand.Intn(13),
		UsageUnit:   spec.unit,
		Maintenance: maintenanceByKind[kind],
		Status:      "active",
	}

	data, err := json.Marshal(vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vehicle: %w", err)
	}

	resp, err := authorizedPost(apiURL+"/vehicles", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("vehicle creation failed with status: %d", resp.StatusCode)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	id := result["id"]
	if id == "" {
		return nil, fmt.Errorf("invalid vehicle ID in response")
	}

	log.WithFields(log.Fields{
		"vehicle_id": id,
		"kind":       kind,
		"unit":       spec.unit,
	}).Info("Created vehicle")

	base := 100 + rand.Float64()*400
	if spec.unit == "miles" {
		base = 20000 + rand.Float64()*60000
	}
	return &VehicleState{
		VehicleID:  id,
		Kind:       kind,
		Unit:       spec.unit,
		Usage:      base,
		RatePerDay: spec.ratePerDay,
	}, nil
}

// VehicleState tracks the simulated counter for one piece of equipment.
type VehicleState struct {
	VehicleID  string
	Kind       string
	Unit       string
	Usage      float64
	RatePerDay float64
}

// stepUsage advances the counter. Each tick stands for dayFraction of a day,
// with noise so two mowers never accumulate identically. Some days equipment
// just sits.
func stepUsage(s *VehicleState, dayFraction float64) {
	if rand.Float64() < 0.3 {
		return
	}
	delta := s.RatePerDay * dayFraction * (0.5 + rand.Float64())
	s.Usage += delta
}

func sendReading(apiURL string, r UsageReading) {
	data, err := json.Marshal(r)
	if err != nil {
		log.WithError(err).Error("Failed to marshal reading")
		return
	}
	resp, err := authorizedPost(apiURL+"/readings/usage", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send reading")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"vehicle_id": r.VehicleID, "reading": r.Reading, "status": resp.Status}).Info("Sent reading")
}

// seasonalLow produces a plausible overnight low for the date: a yearly sine
// bottoming out in mid January, plus noise.
func seasonalLow(t time.Time) float64 {
	day := float64(t.YearDay())
	mean := 45 - 25*math.Cos((day-15)/365*2*math.Pi)
	return mean + (rand.Float64()*2-1)*8
}

func sendForecast(apiURL string, low float64) {
	data, err := json.Marshal(map[string]float64{"low": low})
	if err != nil {
		log.WithError(err).Error("Failed to marshal forecast")
		return
	}
	resp, err := authorizedPost(apiURL+"/readings/forecast", bytes.NewBuffer(data))
	if err != nil {
		log.WithError(err).Error("Failed to send forecast")
		return
	}
	defer resp.Body.Close()
	log.WithFields(log.Fields{"low": low, "status": resp.Status}).Info("Sent forecast low")
}

func simulateVehicle(apiURL string, s *VehicleState, interval time.Duration, dayFraction float64) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		stepUsage(s, dayFraction)
		sendReading(apiURL, UsageReading{
			VehicleID:  s.VehicleID,
			Reading:    math.Round(s.Usage*10) / 10,
			RecordedAt: time.Now(),
		})
	}
}

func main() {
	authToken = os.Getenv("SIM_AUTH_TOKEN")

	vehicleCount := 4
	if val := os.Getenv("VEHICLE_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			vehicleCount = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	// Each tick advances the simulated clock by this fraction of a day, so a
	// short run still walks equipment toward its service thresholds.
	dayFraction := 0.25
	if v := os.Getenv("SIM_DAY_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			dayFraction = f
		}
	}

	log.WithFields(log.Fields{
		"vehicle_count": vehicleCount,
		"api_url":       apiURL,
		"interval":      interval,
	}).Info("Starting homestead simulation")

	states := make([]*VehicleState, 0, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		state, err := createVehicle(apiURL, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		states = append(states, state)
	}

	log.WithField("created_vehicles", len(states)).Info("Vehicle creation completed")
	if len(states) == 0 {
		log.Error("No vehicles created. Ensure SIM_AUTH_TOKEN is valid and API is reachable. Exiting.")
		time.Sleep(2 * time.Second)
		return
	}

	for _, s := range states {
		go simulateVehicle(apiURL, s, interval, dayFraction)
	}

	go func() {
		tick := time.NewTicker(interval * 5)
		defer tick.Stop()
		sendForecast(apiURL, seasonalLow(time.Now()))
		for range tick.C {
			sendForecast(apiURL, seasonalLow(time.Now()))
		}
	}()

	log.Info("Usage simulation started")
	select {} // Block forever
}
