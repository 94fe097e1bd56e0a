package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	Reminders ReminderConfig
	Sync      SyncConfig
}
type SlackConfig struct {
	Token string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type ReminderConfig struct {
	Lead time.Duration
}
type SyncConfig struct {
	QueueSize int
}
