package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksUpdated   int            `json:"tasks_updated"`
	StatusChanges  map[string]int `json:"status_changes"`
	SaveFailures   int            `json:"save_failures"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into
// metrics. StatusChanges counts transitions by the new status label.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		StatusChanges: make(map[string]int),
	}

	m.EventCount = len(events)
	completed := models.StatusCompleted.Label()

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case core.EventTaskCreated:
			m.TasksCreated++
		case core.EventTaskUpdated:
			m.TasksUpdated++
		case core.EventTaskDeleted:
			m.TasksDeleted++
		case core.EventTaskStatusChanged:
			if status, ok := event.Data["new_status"].(string); ok {
				m.StatusChanges[status]++
				if status == completed {
					m.TasksCompleted++
				}
			}
		case core.EventTaskSaveFailed:
			m.SaveFailures++
		}
	}

	return m, nil
}

// ParseSince parses a human-friendly window like "7d", "30d" or "24h" into
// the instant that far before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	num, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if num < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	switch suffix := s[len(s)-1]; suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
