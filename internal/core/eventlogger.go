package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types emitted by the task manager.
const (
	EventTaskLoaded          = "task.loaded"
	EventTaskLoadFailed      = "task.load_failed"
	EventTaskCreated         = "task.created"
	EventTaskUpdated         = "task.updated"
	EventTaskStatusChanged   = "task.status_changed"
	EventTaskStatusUnchanged = "task.status_unchanged"
	EventTaskDeleted         = "task.deleted"
	EventTaskSaved           = "task.saved"
	EventTaskSaveFailed      = "task.save_failed"
	EventTaskFiltered        = "task.filtered"
	EventTaskSorted          = "task.sorted"
)
