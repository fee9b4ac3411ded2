package cli

import (
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/internal/observability"
)

// BasePath is the directory holding .todoconfig and the task file.
var BasePath string

// TaskMgr is the task engine used by every task command.
var TaskMgr core.TaskManager

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
