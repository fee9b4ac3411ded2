package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when proposed task fields fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when an operation targets an unknown task id.
	ErrNotFound = errors.New("task not found")

	// ErrPersistence wraps failures reading or writing the task store.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError describes which field was rejected and why. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func notFound(id int) error {
	return fmt.Errorf("task %d: %w", id, ErrNotFound)
}
