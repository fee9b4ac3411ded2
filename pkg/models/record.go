package models

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout used for creation and modification
// timestamps in task files.
const TimestampLayout = time.RFC3339Nano

// naiveTimestampLayout accepts ISO datetimes without a zone offset, as
// written by the first release. They are interpreted in local time.
const naiveTimestampLayout = "2006-01-02T15:04:05.999999999"

// TaskRecord is the flat persisted form of a Task. Category and DueDate are
// nil when unset.
type TaskRecord struct {
	ID               int     `json:"id" yaml:"id"`
	Title            string  `json:"title" yaml:"title"`
	Description      string  `json:"description" yaml:"description"`
	Category         *string `json:"category" yaml:"category"`
	Priority         string  `json:"priority" yaml:"priority"`
	DueDate          *string `json:"due_date" yaml:"due_date"`
	Status           string  `json:"status" yaml:"status"`
	CreationDate     string  `json:"creation_date" yaml:"creation_date"`
	ModificationDate string  `json:"modification_date" yaml:"modification_date"`
}

// ToRecord converts t to its persisted form.
func (t Task) ToRecord() TaskRecord {
	rec := TaskRecord{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Priority:         t.Priority.Label(),
		Status:           t.Status.Label(),
		CreationDate:     t.Created.Format(TimestampLayout),
		ModificationDate: t.Updated.Format(TimestampLayout),
	}
	if t.HasCategory() {
		label := t.Category.Label()
		rec.Category = &label
	}
	if t.HasDueDate() {
		due := t.DueDate.String()
		rec.DueDate = &due
	}
	return rec
}

// TaskFromRecord converts a persisted record back to a Task.
func TaskFromRecord(rec TaskRecord) (Task, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return Task{}, fmt.Errorf("decoding task %d: title is empty", rec.ID)
	}

	status, err := ParseStatus(rec.Status)
	if err != nil {
		return Task{}, fmt.Errorf("decoding task %d: %w", rec.ID, err)
	}

	priority := PriorityMedium
	if rec.Priority != "" {
		priority, err = ParsePriority(rec.Priority)
		if err != nil {
			return Task{}, fmt.Errorf("decoding task %d: %w", rec.ID, err)
		}
	}

	created, err := parseTimestamp(rec.CreationDate)
	if err != nil {
		return Task{}, fmt.Errorf("decoding task %d: creation_date: %w", rec.ID, err)
	}
	updated, err := parseTimestamp(rec.ModificationDate)
	if err != nil {
		return Task{}, fmt.Errorf("decoding task %d: modification_date: %w", rec.ID, err)
	}

	task := Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    priority,
		Status:      status,
		Created:     created,
		Updated:     updated,
	}
	if rec.Category != nil {
		task.Category = ParseCategory(*rec.Category)
	}
	if rec.DueDate != nil && *rec.DueDate != "" {
		task.DueDate, err = ParseDate(*rec.DueDate)
		if err != nil {
			return Task{}, fmt.Errorf("decoding task %d: due_date: %w", rec.ID, err)
		}
	}
	return task, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(naiveTimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
