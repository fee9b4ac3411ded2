package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/todo-list/pkg/models"
	"gopkg.in/yaml.v3"
)

// InitConfig holds the parameters for initializing a task directory.
type InitConfig struct {
	BasePath        string
	StorageFormat   models.StorageFormat
	DefaultPriority models.Priority
	DisableEvents   bool
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer prepares a directory for use by writing a starter
// .todoconfig.yaml.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct{}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{}
}

// configDocument mirrors the keys LoadGlobalConfig reads.
type configDocument struct {
	Storage struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format"`
	} `yaml:"storage"`
	Events struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"events"`
	Defaults struct {
		Priority string `yaml:"priority"`
	} `yaml:"defaults"`
	Alerts struct {
		StaleDays    int `yaml:"stale_days"`
		MaxOpenTasks int `yaml:"max_open_tasks"`
	} `yaml:"alerts"`
	Notifications struct {
		SlackWebhook string `yaml:"slack_webhook"`
	} `yaml:"notifications"`
}

var storageFileNames = map[models.StorageFormat]string{
	models.FormatJSON:   "tasks.json",
	models.FormatYAML:   "tasks.yaml",
	models.FormatSQLite: "tasks.db",
}

// Init creates the base directory and writes .todoconfig.yaml populated
// with the defaults. An existing configuration file is never overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.StorageFormat == "" {
		config.StorageFormat = models.FormatJSON
	}
	fileName, ok := storageFileNames[config.StorageFormat]
	if !ok {
		return nil, fmt.Errorf("initializing: storage format %q is invalid: must be json, yaml or sqlite", config.StorageFormat)
	}
	if config.DefaultPriority == "" {
		config.DefaultPriority = models.PriorityMedium
	}
	if !config.DefaultPriority.Valid() {
		return nil, fmt.Errorf("initializing: default priority %q is invalid: must be High, Medium or Low", config.DefaultPriority)
	}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing: creating %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	}

	defaults := defaultGlobalConfig()
	var doc configDocument
	doc.Storage.Path = fileName
	doc.Storage.Format = string(config.StorageFormat)
	doc.Events.Enabled = !config.DisableEvents
	doc.Events.Path = defaults.EventsPath
	doc.Defaults.Priority = config.DefaultPriority.Label()
	doc.Alerts.StaleDays = defaults.Alerts.StaleDays
	doc.Alerts.MaxOpenTasks = defaults.Alerts.MaxOpenTasks

	target := filepath.Join(config.BasePath, ConfigFileName+".yaml")
	if err := writeFileIfNotExists(target, func() ([]byte, error) { return yaml.Marshal(doc) }, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
