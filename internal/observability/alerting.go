package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/todo-list/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

func (s AlertSeverity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Alert conditions.
const (
	ConditionOverdue      = "task_overdue"
	ConditionDueSoon      = "task_due_soon"
	ConditionStale        = "task_stale"
	ConditionTooManyTasks = "too_many_open_tasks"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TaskID      int           `json:"task_id,omitempty"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	StaleDays    int `yaml:"stale_days" json:"stale_days"`
	MaxOpenTasks int `yaml:"max_open_tasks" json:"max_open_tasks"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StaleDays:    7,
		MaxOpenTasks: 20,
	}
}

// TaskSource provides the current task collection.
type TaskSource interface {
	GetAll() []models.Task
}

// AlertEngine evaluates alert conditions against the current tasks and the
// event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine.
type alertEngine struct {
	tasks      TaskSource
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine. eventLog may be nil, in which case
// staleness is judged from modification dates alone. Zero thresholds fall
// back to the defaults.
func NewAlertEngine(tasks TaskSource, eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	defaults := DefaultAlertThresholds()
	if thresholds.StaleDays <= 0 {
		thresholds.StaleDays = defaults.StaleDays
	}
	if thresholds.MaxOpenTasks <= 0 {
		thresholds.MaxOpenTasks = defaults.MaxOpenTasks
	}
	return &alertEngine{
		tasks:      tasks,
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate checks all alert conditions and returns the triggered alerts,
// most severe first.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now()
	tasks := ae.tasks.GetAll()
	var alerts []Alert

	alerts = append(alerts, ae.checkDueDates(tasks, now)...)

	staleAlerts, err := ae.checkStaleTasks(tasks, now)
	if err != nil {
		return nil, fmt.Errorf("checking stale tasks: %w", err)
	}
	alerts = append(alerts, staleAlerts...)

	alerts = append(alerts, ae.checkOpenTaskCount(tasks, now)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.rank() > alerts[j].Severity.rank()
	})
	return alerts, nil
}

// checkDueDates raises overdue and due-soon alerts. Completed tasks never
// alert.
func (ae *alertEngine) checkDueDates(tasks []models.Task, now time.Time) []Alert {
	today := models.DateOf(now)
	var alerts []Alert
	for _, t := range tasks {
		switch {
		case t.IsOverdue(today):
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("overdue-%d", t.ID),
				Condition:   ConditionOverdue,
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("task %d %q was due %s", t.ID, t.Title, t.DueDate),
				TaskID:      t.ID,
				TriggeredAt: now,
			})
		case t.IsDueSoon(today):
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("due-soon-%d", t.ID),
				Condition:   ConditionDueSoon,
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %d %q is due %s", t.ID, t.Title, t.DueDate),
				TaskID:      t.ID,
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

// checkStaleTasks looks for in-progress tasks with no recent activity. The
// last activity is the later of the task's modification date and its most
// recent logged event.
func (ae *alertEngine) checkStaleTasks(tasks []models.Task, now time.Time) ([]Alert, error) {
	lastActivity := make(map[int]time.Time)
	if ae.eventLog != nil {
		events, err := ae.eventLog.Read(EventFilter{})
		if err != nil {
			return nil, err
		}
		for _, event := range events {
			id, ok := taskIDOf(event.Data)
			if !ok {
				continue
			}
			if event.Time.After(lastActivity[id]) {
				lastActivity[id] = event.Time
			}
		}
	}

	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour
	var alerts []Alert
	for _, t := range tasks {
		if t.Status != models.StatusInProgress {
			continue
		}
		last := t.Updated
		if seen := lastActivity[t.ID]; seen.After(last) {
			last = seen
		}
		if now.Sub(last) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stale-%d", t.ID),
				Condition:   ConditionStale,
				Severity:    SeverityMedium,
				Message:     fmt.Sprintf("task %d %q has had no activity for more than %d days", t.ID, t.Title, ae.thresholds.StaleDays),
				TaskID:      t.ID,
				TriggeredAt: now,
			})
		}
	}
	return alerts, nil
}

// checkOpenTaskCount alerts when the number of tasks not yet completed
// exceeds the threshold.
func (ae *alertEngine) checkOpenTaskCount(tasks []models.Task, now time.Time) []Alert {
	open := 0
	for _, t := range tasks {
		if t.Status != models.StatusCompleted {
			open++
		}
	}

	if open <= ae.thresholds.MaxOpenTasks {
		return nil
	}
	return []Alert{{
		ID:          "open-tasks",
		Condition:   ConditionTooManyTasks,
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d open tasks, exceeding the maximum of %d", open, ae.thresholds.MaxOpenTasks),
		TriggeredAt: now,
	}}
}
