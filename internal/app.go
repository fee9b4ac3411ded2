// Package internal provides the App struct that wires all components of the
// task manager together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/todo-list/internal/cli"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/internal/observability"
	"github.com/valter-silva-au/todo-list/internal/storage"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// App holds all service dependencies of the task manager.
type App struct {
	BasePath string
	Config   *models.GlobalConfig

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Persistence
	Store storage.TaskFile

	// Core services
	TaskMgr     core.TaskManager
	ProjectInit core.ProjectInitializer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components. basePath is the directory holding
// .todoconfig; relative paths in the configuration resolve against it.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app.Config = cfg

	// --- Persistence ---
	app.Store, err = storage.NewTaskFile(cfg.StoragePath, cfg.StorageFormat)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}

	// --- Observability ---
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(cfg.EventsPath)
		if err != nil {
			// Non-fatal: run without the event log.
			app.EventLog = nil
		}
	}
	var evtAdapter core.EventLogger
	var idFloor func() (int, error)
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog, now: time.Now}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		eventLog := app.EventLog
		idFloor = func() (int, error) { return observability.HighestTaskID(eventLog) }
	}

	// --- Core services ---
	app.TaskMgr = core.NewTaskManager(core.EngineConfig{
		Store:           app.Store,
		Logger:          evtAdapter,
		DefaultPriority: cfg.DefaultPriority,
		IDFloor:         idFloor,
	})
	app.ProjectInit = core.NewProjectInitializer()

	app.AlertEngine = observability.NewAlertEngine(app.TaskMgr, app.EventLog, observability.AlertThresholds{
		StaleDays:    cfg.Alerts.StaleDays,
		MaxOpenTasks: cfg.Alerts.MaxOpenTasks,
	})
	if cfg.SlackWebhook != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.SlackWebhook)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.TaskMgr = app.TaskMgr
	cli.ProjectInit = app.ProjectInit
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close performs the final save and releases the event log file handle. The
// event log is closed last so the save outcome is still recorded.
func (a *App) Close() error {
	var saveErr error
	if a.TaskMgr != nil {
		saveErr = a.TaskMgr.Close()
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil && saveErr == nil {
			return err
		}
	}
	return saveErr
}

// ResolveBasePath determines the directory holding the task data. It checks
// the TODO_HOME env var, then walks up from the current directory looking
// for a .todoconfig file, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TODO_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if hasConfigFile(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

func hasConfigFile(dir string) bool {
	for _, name := range []string{core.ConfigFileName, core.ConfigFileName + ".yaml", core.ConfigFileName + ".yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
	now func() time.Time
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    a.now().UTC(),
		Level:   observability.LevelFor(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
