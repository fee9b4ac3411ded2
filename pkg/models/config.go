package models

// StorageFormat selects the encoding of the task file.
type StorageFormat string

const (
	FormatJSON   StorageFormat = "json"
	FormatYAML   StorageFormat = "yaml"
	FormatSQLite StorageFormat = "sqlite"
)

// GlobalConfig holds settings read from .todoconfig via Viper.
type GlobalConfig struct {
	StoragePath     string        `yaml:"storage_path" mapstructure:"storage_path"`
	StorageFormat   StorageFormat `yaml:"storage_format" mapstructure:"storage_format"`
	EventsEnabled   bool          `yaml:"events_enabled" mapstructure:"events_enabled"`
	EventsPath      string        `yaml:"events_path" mapstructure:"events_path"`
	DefaultPriority Priority      `yaml:"default_priority" mapstructure:"default_priority"`
	Alerts          AlertConfig   `yaml:"alerts" mapstructure:"alerts"`

	// SlackWebhook receives alert digests from "todo alerts --notify".
	SlackWebhook string `yaml:"slack_webhook" mapstructure:"slack_webhook"`
}

// AlertConfig holds thresholds for the alert engine. Zero values fall back
// to the engine defaults.
type AlertConfig struct {
	StaleDays    int `yaml:"stale_days" mapstructure:"stale_days"`
	MaxOpenTasks int `yaml:"max_open_tasks" mapstructure:"max_open_tasks"`
}
