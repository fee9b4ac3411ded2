package core

import "github.com/valter-silva-au/todo-list/pkg/models"

// TaskStore is the persistence gateway the task manager reads from and
// writes to. It is defined here so core stays independent of the storage
// package; storage.TaskFile satisfies it.
type TaskStore interface {
	// Load returns every stored task in file order. A missing store yields
	// an empty slice and no error.
	Load() ([]models.Task, error)
	// Save replaces the stored collection with tasks.
	Save(tasks []models.Task) error
}
