package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultReminderLeadMinutes = 60
	defaultSyncQueueSize       = 256
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	return Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token: os.Getenv("SLACK_BOT_TOKEN"),
		},
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: os.Getenv("GCP_PROJECT"),
		Reminders: ReminderConfig{
			Lead: time.Duration(getInt("REMINDER_LEAD_MINUTES", defaultReminderLeadMinutes)) * time.Minute,
		},
		Sync: SyncConfig{
			QueueSize: getInt("SYNC_QUEUE_SIZE", defaultSyncQueueSize),
		},
	}
}

// getInt reads an optional positive integer, falling back to def when the
// variable is unset or invalid.
func getInt(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Warn("Ignoring invalid integer environment variable", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}
