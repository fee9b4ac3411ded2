// Package core contains the business logic of the task manager: the
// validator, the task engine, and configuration loading.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// ConfigFileName is the name of the YAML configuration file looked up in the
// base directory.
const ConfigFileName = ".todoconfig"

// ConfigurationManager defines the interface for loading and validating the
// global configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .todoconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		StoragePath:     "tasks.json",
		EventsEnabled:   true,
		EventsPath:      ".todo_events.jsonl",
		DefaultPriority: models.PriorityMedium,
		Alerts: models.AlertConfig{
			StaleDays:    7,
			MaxOpenTasks: 20,
		},
	}
}

// LoadGlobalConfig reads .todoconfig from the base path using Viper. If the
// file does not exist, defaults are returned. Relative paths are resolved
// against the base path.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("storage.path", cfg.StoragePath)
	v.SetDefault("storage.format", "")
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("events.path", cfg.EventsPath)
	v.SetDefault("defaults.priority", cfg.DefaultPriority.Label())
	v.SetDefault("alerts.stale_days", cfg.Alerts.StaleDays)
	v.SetDefault("alerts.max_open_tasks", cfg.Alerts.MaxOpenTasks)
	v.SetDefault("notifications.slack_webhook", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.StoragePath = v.GetString("storage.path")
	cfg.StorageFormat = models.StorageFormat(strings.ToLower(v.GetString("storage.format")))
	if cfg.StorageFormat == "" {
		cfg.StorageFormat = FormatForPath(cfg.StoragePath)
	}
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.EventsPath = v.GetString("events.path")
	cfg.Alerts.StaleDays = v.GetInt("alerts.stale_days")
	cfg.Alerts.MaxOpenTasks = v.GetInt("alerts.max_open_tasks")
	cfg.SlackWebhook = v.GetString("notifications.slack_webhook")

	priority, err := models.ParsePriority(v.GetString("defaults.priority"))
	if err != nil {
		return nil, fmt.Errorf("reading %s: defaults.priority: %w", ConfigFileName, err)
	}
	cfg.DefaultPriority = priority

	cfg.StoragePath = cm.resolve(cfg.StoragePath)
	cfg.EventsPath = cm.resolve(cfg.EventsPath)

	return cfg, nil
}

func (cm *viperConfigManager) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cm.basePath, path)
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if strings.TrimSpace(cfg.StoragePath) == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	switch cfg.StorageFormat {
	case models.FormatJSON, models.FormatYAML, models.FormatSQLite:
	default:
		return fmt.Errorf("storage.format %q is invalid: must be json, yaml or sqlite", cfg.StorageFormat)
	}
	if !cfg.DefaultPriority.Valid() {
		return fmt.Errorf("defaults.priority %q is invalid: must be High, Medium or Low", cfg.DefaultPriority)
	}
	if cfg.EventsEnabled && strings.TrimSpace(cfg.EventsPath) == "" {
		return fmt.Errorf("events.path must not be empty when events are enabled")
	}
	if cfg.Alerts.StaleDays < 0 {
		return fmt.Errorf("alerts.stale_days must not be negative, got %d", cfg.Alerts.StaleDays)
	}
	if cfg.SlackWebhook != "" && !strings.HasPrefix(cfg.SlackWebhook, "https://") && !strings.HasPrefix(cfg.SlackWebhook, "http://") {
		return fmt.Errorf("notifications.slack_webhook must be an http(s) URL")
	}
	if cfg.Alerts.MaxOpenTasks < 0 {
		return fmt.Errorf("alerts.max_open_tasks must not be negative, got %d", cfg.Alerts.MaxOpenTasks)
	}
	return nil
}

// FormatForPath infers the storage format from a file extension, defaulting
// to JSON.
func FormatForPath(path string) models.StorageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return models.FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return models.FormatSQLite
	default:
		return models.FormatJSON
	}
}
