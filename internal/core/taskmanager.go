package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/todo-list/pkg/models"
)

// FilterCriteria selects tasks by exact match. Empty fields impose no
// constraint; set fields combine with AND.
type FilterCriteria struct {
	Status   models.TaskStatus
	Category models.Category
	Priority models.Priority
}

// IsEmpty reports whether the criteria match every task.
func (c FilterCriteria) IsEmpty() bool {
	return c == FilterCriteria{}
}

// Matches reports whether task satisfies every set criterion.
func (c FilterCriteria) Matches(task models.Task) bool {
	if c.Status != "" && task.Status != c.Status {
		return false
	}
	if c.Category != "" && task.Category != c.Category {
		return false
	}
	if c.Priority != "" && task.Priority != c.Priority {
		return false
	}
	return true
}

// SortKey names a sort order for SortTasks.
type SortKey string

const (
	SortByDueDate      SortKey = "dueDate"
	SortByPriority     SortKey = "priority"
	SortByCreationDate SortKey = "creationDate"
	SortByTitle        SortKey = "title"
)

// Stats summarizes the collection for status displays.
type Stats struct {
	Total     int
	Filtered  int
	Completed int
	Overdue   int
	DueSoon   int
	ByStatus  map[models.TaskStatus]int
}

// TaskManager is the single authoritative task store. All returned tasks are
// copies; changing them has no effect on the collection.
type TaskManager interface {
	Create(fields TaskFields) (models.Task, error)
	Update(id int, fields TaskFields) (models.Task, error)
	// ChangeStatus reports changed=false, with a nil error, when the task
	// already has the requested status.
	ChangeStatus(id int, status models.TaskStatus) (task models.Task, changed bool, err error)
	Delete(id int) bool
	FindByID(id int) (models.Task, bool)
	ApplyFilters(criteria FilterCriteria) []models.Task
	SortTasks(key SortKey, reverse bool) []models.Task
	SortView(key SortKey, reverse bool) []models.Task
	GetAll() []models.Task
	GetFiltered() []models.Task
	ActiveFilter() FilterCriteria
	Stats() Stats
	Load() error
	Save() error
	Close() error
}

// EngineConfig carries the explicit state a task manager is built from.
type EngineConfig struct {
	Store TaskStore
	// Logger may be nil to disable event logging.
	Logger EventLogger
	// Now defaults to time.Now.
	Now func() time.Time
	// DefaultPriority applies when Create is called without a priority.
	// Defaults to Medium.
	DefaultPriority models.Priority
	// IDFloor reports the highest id ever issued according to an external
	// record such as the event log, so ids of deleted tasks are not reissued
	// after a restart. May be nil; errors are ignored.
	IDFloor func() (int, error)
}

// taskManager owns the in-memory collection. It performs no locking: callers
// must serialize access.
type taskManager struct {
	store           TaskStore
	logger          EventLogger
	now             func() time.Time
	defaultPriority models.Priority
	idFloor         func() (int, error)

	tasks  []models.Task
	nextID int

	filter FilterCriteria
	// view holds the ids of the current filtered view, in display order.
	view []int
}

// NewTaskManager creates a TaskManager and loads the stored collection. A
// store that cannot be read leaves the manager with an empty collection.
func NewTaskManager(cfg EngineConfig) TaskManager {
	tm := &taskManager{
		store:           cfg.Store,
		logger:          cfg.Logger,
		now:             cfg.Now,
		defaultPriority: cfg.DefaultPriority,
		idFloor:         cfg.IDFloor,
		nextID:          1,
	}
	if tm.now == nil {
		tm.now = time.Now
	}
	if !tm.defaultPriority.Valid() {
		tm.defaultPriority = models.PriorityMedium
	}
	_ = tm.Load()
	return tm
}

// Create validates fields and appends a new NotStarted task.
func (tm *taskManager) Create(fields TaskFields) (models.Task, error) {
	now := tm.now()
	if err := ValidateNewTask(fields, models.DateOf(now)); err != nil {
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}

	task := models.Task{
		ID:       tm.nextID,
		Priority: tm.defaultPriority,
		Status:   models.StatusNotStarted,
		Created:  now,
		Updated:  now,
	}
	applyFields(&task, fields)
	tm.nextID++

	tm.tasks = append(tm.tasks, task)
	tm.refreshView()
	tm.persist()

	tm.logEvent(EventTaskCreated, map[string]any{
		"task_id":  task.ID,
		"title":    task.Title,
		"priority": task.Priority.Label(),
		"category": task.Category.Label(),
	})
	return task, nil
}

// Update applies the present fields to an existing task.
func (tm *taskManager) Update(id int, fields TaskFields) (models.Task, error) {
	idx := tm.indexOf(id)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("updating task: %w", notFound(id))
	}

	now := tm.now()
	if err := ValidateTaskFields(fields, models.DateOf(now)); err != nil {
		return models.Task{}, fmt.Errorf("updating task %d: %w", id, err)
	}

	task := &tm.tasks[idx]
	applyFields(task, fields)
	tm.touch(task, now)

	tm.refreshView()
	tm.persist()

	tm.logEvent(EventTaskUpdated, map[string]any{"task_id": id, "fields": presentFields(fields)})
	return *task, nil
}

// ChangeStatus moves a task to status. Any transition is allowed.
func (tm *taskManager) ChangeStatus(id int, status models.TaskStatus) (models.Task, bool, error) {
	idx := tm.indexOf(id)
	if idx < 0 {
		return models.Task{}, false, fmt.Errorf("changing task status: %w", notFound(id))
	}
	if !status.Valid() {
		return models.Task{}, false, fmt.Errorf("changing task %d status: %w",
			id, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)})
	}

	task := &tm.tasks[idx]
	if task.Status == status {
		tm.logEvent(EventTaskStatusUnchanged, map[string]any{"task_id": id, "status": status.Label()})
		return *task, false, nil
	}

	oldStatus := task.Status
	task.Status = status
	tm.touch(task, tm.now())

	tm.refreshView()
	tm.persist()

	tm.logEvent(EventTaskStatusChanged, map[string]any{
		"task_id":    id,
		"old_status": oldStatus.Label(),
		"new_status": status.Label(),
	})
	return *task, true, nil
}

// Delete removes a task. It returns false, without saving, when no task has
// the given id.
func (tm *taskManager) Delete(id int) bool {
	idx := tm.indexOf(id)
	if idx < 0 {
		return false
	}

	removed := tm.tasks[idx]
	tm.tasks = append(tm.tasks[:idx], tm.tasks[idx+1:]...)
	tm.refreshView()
	tm.persist()

	tm.logEvent(EventTaskDeleted, map[string]any{"task_id": id, "title": removed.Title})
	return true
}

// FindByID returns a copy of the task with the given id.
func (tm *taskManager) FindByID(id int) (models.Task, bool) {
	idx := tm.indexOf(id)
	if idx < 0 {
		return models.Task{}, false
	}
	return tm.tasks[idx], true
}

// ApplyFilters replaces the active filter and returns the new view in
// collection order.
func (tm *taskManager) ApplyFilters(criteria FilterCriteria) []models.Task {
	criteria.Category = models.ParseCategory(string(criteria.Category))
	tm.filter = criteria
	tm.refreshView()

	tm.logEvent(EventTaskFiltered, map[string]any{
		"status":   criteria.Status.Label(),
		"category": criteria.Category.Label(),
		"priority": criteria.Priority.Label(),
		"matched":  len(tm.view),
	})
	return tm.GetFiltered()
}

// SortTasks returns the current view sorted by key. The stored view is left
// as it was. Unknown keys sort by creation date.
func (tm *taskManager) SortTasks(key SortKey, reverse bool) []models.Task {
	sorted := tm.GetFiltered()
	sortTasks(sorted, key, reverse)

	tm.logEvent(EventTaskSorted, map[string]any{"key": string(key), "reverse": reverse})
	return sorted
}

// SortView sorts the current view and keeps the sorted order as the view
// until the next filter or mutation.
func (tm *taskManager) SortView(key SortKey, reverse bool) []models.Task {
	sorted := tm.SortTasks(key, reverse)
	tm.view = tm.view[:0]
	for _, t := range sorted {
		tm.view = append(tm.view, t.ID)
	}
	return sorted
}

// GetAll returns a copy of the full collection in collection order.
func (tm *taskManager) GetAll() []models.Task {
	out := make([]models.Task, len(tm.tasks))
	copy(out, tm.tasks)
	return out
}

// GetFiltered returns a copy of the current view.
func (tm *taskManager) GetFiltered() []models.Task {
	out := make([]models.Task, 0, len(tm.view))
	for _, id := range tm.view {
		if idx := tm.indexOf(id); idx >= 0 {
			out = append(out, tm.tasks[idx])
		}
	}
	return out
}

// ActiveFilter returns the criteria of the last ApplyFilters call.
func (tm *taskManager) ActiveFilter() FilterCriteria {
	return tm.filter
}

// Stats counts tasks relative to today's date.
func (tm *taskManager) Stats() Stats {
	today := models.DateOf(tm.now())
	s := Stats{
		Total:    len(tm.tasks),
		Filtered: len(tm.view),
		ByStatus: make(map[models.TaskStatus]int),
	}
	for _, t := range tm.tasks {
		s.ByStatus[t.Status]++
		if t.Status == models.StatusCompleted {
			s.Completed++
		}
		if t.IsOverdue(today) {
			s.Overdue++
		}
		if t.IsDueSoon(today) {
			s.DueSoon++
		}
	}
	return s
}

// issuedFloor returns the highest id known to have been issued before this
// session, or 0 when there is no record.
func (tm *taskManager) issuedFloor() int {
	if tm.idFloor == nil {
		return 0
	}
	floor, err := tm.idFloor()
	if err != nil || floor < 0 {
		return 0
	}
	return floor
}

// Load replaces the collection with the stored one. On any failure the
// collection is emptied, the failure is logged, and the error is returned.
func (tm *taskManager) Load() error {
	tasks, err := tm.loadFromStore()
	if err != nil {
		tm.tasks = nil
		tm.nextID = tm.issuedFloor() + 1
		tm.refreshView()
		tm.logEvent(EventTaskLoadFailed, map[string]any{"error": err.Error()})
		return fmt.Errorf("loading tasks: %w", err)
	}

	tm.tasks = tasks
	tm.nextID = tm.issuedFloor() + 1
	for _, t := range tasks {
		if t.ID >= tm.nextID {
			tm.nextID = t.ID + 1
		}
	}
	tm.refreshView()
	tm.logEvent(EventTaskLoaded, map[string]any{"count": len(tasks)})
	return nil
}

func (tm *taskManager) loadFromStore() ([]models.Task, error) {
	if tm.store == nil {
		return nil, nil
	}
	tasks, err := tm.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	seen := make(map[int]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %d", ErrPersistence, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return tasks, nil
}

// Save writes the full collection to the store.
func (tm *taskManager) Save() error {
	if tm.store == nil {
		return nil
	}
	if err := tm.store.Save(tm.GetAll()); err != nil {
		err = fmt.Errorf("saving tasks: %w: %w", ErrPersistence, err)
		tm.logEvent(EventTaskSaveFailed, map[string]any{"error": err.Error()})
		return err
	}
	tm.logEvent(EventTaskSaved, map[string]any{"count": len(tm.tasks)})
	return nil
}

// Close performs the final save at orderly shutdown.
func (tm *taskManager) Close() error {
	return tm.Save()
}

// persist saves after a mutation. A failed save is logged by Save and does
// not undo the in-memory change.
func (tm *taskManager) persist() {
	_ = tm.Save()
}

func (tm *taskManager) indexOf(id int) int {
	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// refreshView recomputes the view from the active filter in collection order.
func (tm *taskManager) refreshView() {
	tm.view = tm.view[:0]
	for _, t := range tm.tasks {
		if tm.filter.Matches(t) {
			tm.view = append(tm.view, t.ID)
		}
	}
}

// touch bumps the modification timestamp, never letting it fall before the
// creation timestamp.
func (tm *taskManager) touch(task *models.Task, now time.Time) {
	if now.Before(task.Created) {
		now = task.Created
	}
	task.Updated = now
}

func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.logger == nil {
		return
	}
	_ = tm.logger.LogEvent(eventType, data)
}

func applyFields(task *models.Task, fields TaskFields) {
	if fields.Title != nil {
		task.Title = strings.TrimSpace(*fields.Title)
	}
	if fields.Description != nil {
		task.Description = *fields.Description
	}
	if fields.Category != nil {
		task.Category = models.ParseCategory(string(*fields.Category))
	}
	if fields.Priority != nil {
		task.Priority = *fields.Priority
	}
	if fields.DueDate != nil {
		task.DueDate = *fields.DueDate
	}
}

func presentFields(fields TaskFields) []string {
	var names []string
	if fields.Title != nil {
		names = append(names, "title")
	}
	if fields.Description != nil {
		names = append(names, "description")
	}
	if fields.Category != nil {
		names = append(names, "category")
	}
	if fields.Priority != nil {
		names = append(names, "priority")
	}
	if fields.DueDate != nil {
		names = append(names, "due_date")
	}
	return names
}

// sortTasks sorts in place. The sort is stable in both directions: equal
// keys keep their relative order even when reversed.
func sortTasks(tasks []models.Task, key SortKey, reverse bool) {
	less := lessFunc(key)
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func lessFunc(key SortKey) func(a, b models.Task) bool {
	switch key {
	case SortByDueDate:
		return func(a, b models.Task) bool {
			// Tasks without a due date sort after every dated task.
			if !a.HasDueDate() {
				return false
			}
			if !b.HasDueDate() {
				return true
			}
			return a.DueDate.Before(b.DueDate)
		}
	case SortByPriority:
		return func(a, b models.Task) bool {
			return a.Priority.Rank() < b.Priority.Rank()
		}
	case SortByTitle:
		return func(a, b models.Task) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	default:
		return func(a, b models.Task) bool {
			return a.Created.Before(b.Created)
		}
	}
}
