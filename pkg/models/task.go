package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusPostponed  TaskStatus = "postponed"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusPostponed}
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusPostponed:
		return true
	}
	return false
}

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AllPriorities returns every priority from highest to lowest.
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank is the numeric sort weight: High=3, Medium=2, Low=1. Unknown
// priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Category is an optional task label. The conventional set is listed below
// but any label is accepted; the empty Category means "no category".
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryHome     Category = "home"
	CategoryOther    Category = "other"
)

// KnownCategories returns the conventional categories.
func KnownCategories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning, CategoryHome, CategoryOther}
}

// DueSoonDays is the inclusive window, in days from today, in which an
// unfinished task counts as due soon.
const DueSoonDays = 2

// Task is one unit of user-tracked work.
type Task struct {
	ID          int
	Title       string
	Description string
	Category    Category
	Priority    Priority
	DueDate     Date
	Status      TaskStatus
	Created     time.Time
	Updated     time.Time
}

// HasCategory reports whether a category is set.
func (t Task) HasCategory() bool {
	return t.Category != ""
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// IsOverdue reports whether the task has a due date strictly before today
// and is not completed.
func (t Task) IsOverdue(today Date) bool {
	if !t.HasDueDate() || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(today)
}

// IsDueSoon reports whether the task is due within DueSoonDays of today
// (inclusive) and is not completed.
func (t Task) IsDueSoon(today Date) bool {
	if !t.HasDueDate() || t.Status == StatusCompleted {
		return false
	}
	days := t.DueDate.DaysSince(today)
	return days >= 0 && days <= DueSoonDays
}
