package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/oakmoor/homestead-ops/internal/alerts"
)

// Config aggregates all runtime settings required by the service.
type Config struct {
	HTTPAddr string
	Timezone *time.Location

	MongoURI string
	MongoDB  string

	MQTTBroker   string
	MQTTClientID string
	UsageTopic   string

	// EvalSpec is the cron spec for the periodic evaluation cycle.
	EvalSpec string

	Schedule ScheduleConfig
	Alerts   AlertConfig
	Auth     AuthConfig
}

// AuthConfig carries the token signing secret and lifetimes.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// ScheduleConfig tunes the due-date calculator and completion semantics.
type ScheduleConfig struct {
	// DueSoonDays is the lookahead window for due_soon classification.
	DueSoonDays int
	// ClearOverrideWithoutRecurrence controls whether a completion clears
	// a manual due date even when no recurrence exists to take over,
	// leaving the subject unscheduled.
	ClearOverrideWithoutRecurrence bool
}

// AlertConfig carries the per-category channel map plus the thresholds
// evaluated upstream of the router.
type AlertConfig struct {
	Channels map[alerts.Category][]alerts.Channel

	ColdBufferDegrees  float64
	StorageWarnPercent float64
	StorageCritPercent float64
}

// Load reads configuration from environment variables (optionally .env) and
// applies defaults so the service can boot in any environment. Channel lists
// are parsed once here; a malformed list is a startup error, not a silent
// no-notify.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	loc, err := time.LoadLocation(getString("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	channels, err := loadChannels()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPAddr:     getString("HTTP_ADDR", ":8080"),
		Timezone:     loc,
		MongoURI:     getString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getString("MONGO_DB", "homestead"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: getString("MQTT_CLIENT_ID", "homestead-ops"),
		UsageTopic:   getString("MQTT_USAGE_TOPIC", "homestead/vehicles/+/usage"),
		EvalSpec:     getString("EVAL_CRON", "@every 5m"),
		Schedule: ScheduleConfig{
			DueSoonDays:                    getInt("DUE_SOON_DAYS", 3),
			ClearOverrideWithoutRecurrence: getBool("CLEAR_OVERRIDE_WITHOUT_RECURRENCE", true),
		},
		Alerts: AlertConfig{
			Channels:           channels,
			ColdBufferDegrees:  getFloat("COLD_BUFFER_DEGREES", 5),
			StorageWarnPercent: getFloat("STORAGE_WARN_PERCENT", 80),
			StorageCritPercent: getFloat("STORAGE_CRIT_PERCENT", 95),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  getDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTokenTTL: getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
		},
	}, nil
}

// notifyVars maps each trigger category to its environment variable. A
// category with no variable set gets no channels: nothing fires for it.
var notifyVars = map[alerts.Category]string{
	alerts.CategoryPlantCare:          "NOTIFY_PLANT_CARE",
	alerts.CategoryVehicleMaintenance: "NOTIFY_VEHICLE_MAINTENANCE",
	alerts.CategoryChores:             "NOTIFY_CHORES",
	alerts.CategoryColdProtection:     "NOTIFY_COLD_PROTECTION",
	alerts.CategoryStorage:            "NOTIFY_STORAGE",
}

func loadChannels() (map[alerts.Category][]alerts.Channel, error) {
	out := map[alerts.Category][]alerts.Channel{}
	for cat, envVar := range notifyVars {
		raw, ok := os.LookupEnv(envVar)
		if !ok {
			continue
		}
		chs, err := alerts.ParseChannelList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envVar, err)
		}
		if len(chs) > 0 {
			out[cat] = chs
		}
	}
	return out, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}
