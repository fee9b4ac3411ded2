package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/valter-silva-au/todo-list/pkg/models"
)

// --- Fakes ---

// inMemoryStore is a TaskStore that keeps the last saved collection.
type inMemoryStore struct {
	tasks   []models.Task
	saves   int
	loadErr error
	saveErr error
}

func (s *inMemoryStore) Load() ([]models.Task, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *inMemoryStore) Save(tasks []models.Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.tasks = make([]models.Task, len(tasks))
	copy(s.tasks, tasks)
	return nil
}

type recordedEvent struct {
	eventType string
	data      map[string]any
}

type recordingLogger struct {
	events []recordedEvent
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.events = append(l.events, recordedEvent{eventType: eventType, data: data})
	return nil
}

func (l *recordingLogger) count(eventType string) int {
	n := 0
	for _, e := range l.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

// fakeClock advances by one second on every reading.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *fakeClock) today() models.Date {
	return models.DateOf(c.now)
}

// --- Helpers ---

func ptr[T any](v T) *T {
	return &v
}

func titled(title string) TaskFields {
	return TaskFields{Title: ptr(title)}
}

type testEnv struct {
	mgr    TaskManager
	store  *inMemoryStore
	logger *recordingLogger
	clock  *fakeClock
}

func newTestManager(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  &inMemoryStore{},
		logger: &recordingLogger{},
		clock:  newFakeClock(),
	}
	env.mgr = NewTaskManager(EngineConfig{Store: env.store, Logger: env.logger, Now: env.clock.Now})
	return env
}

func mustCreate(t *testing.T, mgr TaskManager, fields TaskFields) models.Task {
	t.Helper()
	task, err := mgr.Create(fields)
	if err != nil {
		t.Fatalf("Create(%+v): unexpected error: %v", fields, err)
	}
	return task
}

func ids(tasks []models.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func assertIDs(t *testing.T, got []models.Task, want ...int) {
	t.Helper()
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Fatalf("ids = %v, want %v", ids(got), want)
	}
}

// --- Create ---

func TestCreate_Defaults(t *testing.T) {
	env := newTestManager(t)

	task := mustCreate(t, env.mgr, titled("Buy milk"))

	if task.Status != models.StatusNotStarted {
		t.Errorf("status = %q, want not_started", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.HasCategory() {
		t.Errorf("category = %q, want absent", task.Category)
	}
	if !task.Created.Equal(task.Updated) {
		t.Errorf("created %v != updated %v", task.Created, task.Updated)
	}
	if env.store.saves != 1 {
		t.Errorf("saves = %d, want 1", env.store.saves)
	}
	if env.logger.count(EventTaskCreated) != 1 {
		t.Error("expected a task.created event")
	}
}

func TestCreate_AllFields(t *testing.T) {
	env := newTestManager(t)
	due := env.clock.today().AddDays(3)

	task := mustCreate(t, env.mgr, TaskFields{
		Title:       ptr("  Write report  "),
		Description: ptr("quarterly numbers"),
		Category:    ptr(models.CategoryWork),
		Priority:    ptr(models.PriorityHigh),
		DueDate:     ptr(due),
	})

	if task.Title != "Write report" {
		t.Errorf("title = %q, want trimmed", task.Title)
	}
	if task.Description != "quarterly numbers" || task.Category != models.CategoryWork ||
		task.Priority != models.PriorityHigh || task.DueDate != due {
		t.Errorf("unexpected task: %+v", task)
	}
}

func TestCreate_CategoryLabelNormalized(t *testing.T) {
	env := newTestManager(t)
	work := mustCreate(t, env.mgr, TaskFields{Title: ptr("Report"), Category: ptr(models.Category(" Work "))})
	home := mustCreate(t, env.mgr, TaskFields{Title: ptr("Dishes"), Category: ptr(models.Category("HOME"))})
	custom := mustCreate(t, env.mgr, TaskFields{Title: ptr("Lesson"), Category: ptr(models.Category("Guitar"))})

	if work.Category != models.CategoryWork || home.Category != models.CategoryHome {
		t.Fatalf("categories = %q, %q; want %q, %q", work.Category, home.Category, models.CategoryWork, models.CategoryHome)
	}
	if custom.Category != "Guitar" {
		t.Errorf("custom category = %q, want kept verbatim", custom.Category)
	}

	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork}), work.ID)
	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Category: "Home"}), home.ID)

	reloaded := NewTaskManager(EngineConfig{Store: env.store})
	for _, want := range []models.Task{work, home, custom} {
		got, ok := reloaded.FindByID(want.ID)
		if !ok || got.Category != want.Category {
			t.Errorf("task %d after reload: category = %q, want %q", want.ID, got.Category, want.Category)
		}
	}
	assertIDs(t, reloaded.ApplyFilters(FilterCriteria{Category: models.CategoryWork}), work.ID)
}

func TestCreate_ConfiguredDefaultPriority(t *testing.T) {
	store := &inMemoryStore{}
	mgr := NewTaskManager(EngineConfig{Store: store, DefaultPriority: models.PriorityLow})

	task := mustCreate(t, mgr, titled("x"))
	if task.Priority != models.PriorityLow {
		t.Errorf("priority = %q, want low", task.Priority)
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	env := newTestManager(t)

	for _, title := range []string{"", "   "} {
		_, err := env.mgr.Create(titled(title))
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Create(%q): expected ErrInvalidInput, got %v", title, err)
		}
	}
	if len(env.mgr.GetAll()) != 0 {
		t.Error("collection must stay empty")
	}
	if env.store.saves != 0 {
		t.Errorf("saves = %d, want 0", env.store.saves)
	}
}

func TestCreate_MissingTitle(t *testing.T) {
	env := newTestManager(t)
	_, err := env.mgr.Create(TaskFields{Description: ptr("no title")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_PastDueDate(t *testing.T) {
	env := newTestManager(t)
	_, err := env.mgr.Create(TaskFields{Title: ptr("late"), DueDate: ptr(env.clock.today().AddDays(-1))})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "due_date" {
		t.Fatalf("expected due_date validation error, got %v", err)
	}
}

func TestCreate_UniqueIDsAfterDelete(t *testing.T) {
	env := newTestManager(t)
	a := mustCreate(t, env.mgr, titled("a"))
	b := mustCreate(t, env.mgr, titled("b"))
	env.mgr.Delete(b.ID)
	c := mustCreate(t, env.mgr, titled("c"))

	if c.ID == a.ID || c.ID == b.ID {
		t.Fatalf("id %d reused (a=%d, b=%d)", c.ID, a.ID, b.ID)
	}
}

// --- Update ---

func TestUpdate_PartialFields(t *testing.T) {
	env := newTestManager(t)
	orig := mustCreate(t, env.mgr, TaskFields{
		Title:       ptr("Original"),
		Description: ptr("keep me"),
		Category:    ptr(models.CategoryHome),
	})

	updated, err := env.mgr.Update(orig.ID, titled("Updated"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "Updated" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Description != "keep me" || updated.Category != models.CategoryHome {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.Updated.After(orig.Updated) {
		t.Errorf("modification date not bumped: %v -> %v", orig.Updated, updated.Updated)
	}
	if !updated.Created.Equal(orig.Created) {
		t.Error("creation date must not change")
	}
	if env.store.saves != 2 {
		t.Errorf("saves = %d, want 2", env.store.saves)
	}
}

func TestUpdate_ClearsOptionalFields(t *testing.T) {
	env := newTestManager(t)
	orig := mustCreate(t, env.mgr, TaskFields{
		Title:    ptr("x"),
		Category: ptr(models.CategoryHealth),
		DueDate:  ptr(env.clock.today()),
	})

	updated, err := env.mgr.Update(orig.ID, TaskFields{Category: ptr(models.Category("")), DueDate: ptr(models.Date{})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.HasCategory() || updated.HasDueDate() {
		t.Errorf("expected cleared fields, got %+v", updated)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	env := newTestManager(t)
	_, err := env.mgr.Update(999, titled("x"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_InvalidLeavesTaskUntouched(t *testing.T) {
	env := newTestManager(t)
	orig := mustCreate(t, env.mgr, titled("x"))

	_, err := env.mgr.Update(orig.ID, TaskFields{Title: ptr("y"), Description: ptr(string(make([]rune, MaxDescriptionLength+1)))})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	got, _ := env.mgr.FindByID(orig.ID)
	if got.Title != "x" {
		t.Errorf("title changed to %q on failed update", got.Title)
	}
}

func TestUpdate_OverdueTaskCanBeRetitled(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, TaskFields{Title: ptr("x"), DueDate: ptr(env.clock.today())})

	// A week later the due date is in the past; editing other fields is fine.
	env.clock.now = env.clock.now.AddDate(0, 0, 7)
	if _, err := env.mgr.Update(task.ID, titled("renamed")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- ChangeStatus ---

func TestChangeStatus(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, titled("x"))

	got, changed, err := env.mgr.ChangeStatus(task.ID, models.StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || got.Status != models.StatusCompleted {
		t.Fatalf("changed=%v status=%q", changed, got.Status)
	}
	if !got.Updated.After(task.Updated) {
		t.Error("modification date not bumped")
	}
	if env.logger.count(EventTaskStatusChanged) != 1 {
		t.Error("expected a task.status_changed event")
	}
}

func TestChangeStatus_NoOp(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, titled("x"))
	first, _, _ := env.mgr.ChangeStatus(task.ID, models.StatusInProgress)
	saves := env.store.saves

	second, changed, err := env.mgr.ChangeStatus(task.ID, models.StatusInProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected no-op")
	}
	if !second.Updated.Equal(first.Updated) {
		t.Error("no-op must not bump the modification date")
	}
	if env.store.saves != saves {
		t.Error("no-op must not save")
	}
	if env.logger.count(EventTaskStatusUnchanged) != 1 {
		t.Error("expected a task.status_unchanged event")
	}
}

func TestChangeStatus_AnyTransition(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, titled("x"))
	for _, s := range []models.TaskStatus{models.StatusCompleted, models.StatusNotStarted, models.StatusPostponed, models.StatusInProgress, models.StatusCompleted} {
		if _, _, err := env.mgr.ChangeStatus(task.ID, s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
}

func TestChangeStatus_Errors(t *testing.T) {
	env := newTestManager(t)
	if _, _, err := env.mgr.ChangeStatus(1, models.StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	task := mustCreate(t, env.mgr, titled("x"))
	if _, _, err := env.mgr.ChangeStatus(task.ID, "archived"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCompletedTaskIsNeverOverdue(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, TaskFields{Title: ptr("Buy milk"), DueDate: ptr(env.clock.today())})
	env.clock.now = env.clock.now.AddDate(0, 0, 3)

	got, _ := env.mgr.FindByID(task.ID)
	if !got.IsOverdue(env.clock.today()) {
		t.Fatal("expected overdue before completion")
	}
	done, _, _ := env.mgr.ChangeStatus(task.ID, models.StatusCompleted)
	if done.IsOverdue(env.clock.today()) {
		t.Error("completed task must not be overdue")
	}
}

// --- Delete / FindByID ---

func TestDelete(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, titled("x"))

	if !env.mgr.Delete(task.ID) {
		t.Fatal("expected true")
	}
	if _, ok := env.mgr.FindByID(task.ID); ok {
		t.Error("task still present")
	}
	if len(env.store.tasks) != 0 {
		t.Error("task still persisted")
	}

	saves := env.store.saves
	if env.mgr.Delete(task.ID) {
		t.Error("second delete must return false")
	}
	if env.store.saves != saves {
		t.Error("deleting a missing task must not save")
	}
}

func TestReturnedTasksAreSnapshots(t *testing.T) {
	env := newTestManager(t)
	task := mustCreate(t, env.mgr, titled("x"))

	all := env.mgr.GetAll()
	all[0].Title = ""
	found, _ := env.mgr.FindByID(task.ID)
	found.Title = ""

	got, _ := env.mgr.FindByID(task.ID)
	if got.Title != "x" {
		t.Fatalf("collection mutated through a returned value: %q", got.Title)
	}
}

// --- Filters ---

func seedFilterTasks(t *testing.T, mgr TaskManager) {
	t.Helper()
	mustCreate(t, mgr, TaskFields{Title: ptr("a"), Category: ptr(models.CategoryWork), Priority: ptr(models.PriorityHigh)})
	mustCreate(t, mgr, TaskFields{Title: ptr("b"), Category: ptr(models.CategoryHome), Priority: ptr(models.PriorityHigh)})
	mustCreate(t, mgr, TaskFields{Title: ptr("c"), Category: ptr(models.CategoryWork), Priority: ptr(models.PriorityLow)})
	mustCreate(t, mgr, TaskFields{Title: ptr("d")})
}

func TestApplyFilters(t *testing.T) {
	env := newTestManager(t)
	seedFilterTasks(t, env.mgr)
	env.mgr.ChangeStatus(3, models.StatusCompleted)

	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{}), 1, 2, 3, 4)
	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork}), 1, 3)
	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork, Priority: models.PriorityHigh}), 1)
	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Status: models.StatusCompleted}), 3)
	assertIDs(t, env.mgr.ApplyFilters(FilterCriteria{Category: "Gardening"}))
}

func TestApplyFilters_ReplacesActiveFilter(t *testing.T) {
	env := newTestManager(t)
	seedFilterTasks(t, env.mgr)

	env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork})
	got := env.mgr.ApplyFilters(FilterCriteria{Priority: models.PriorityHigh})

	assertIDs(t, got, 1, 2)
	if env.mgr.ActiveFilter() != (FilterCriteria{Priority: models.PriorityHigh}) {
		t.Errorf("active filter = %+v", env.mgr.ActiveFilter())
	}
}

func TestActiveFilterReappliedAfterMutations(t *testing.T) {
	env := newTestManager(t)
	seedFilterTasks(t, env.mgr)
	env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork})

	mustCreate(t, env.mgr, TaskFields{Title: ptr("e"), Category: ptr(models.CategoryWork)})
	assertIDs(t, env.mgr.GetFiltered(), 1, 3, 5)

	env.mgr.Update(1, TaskFields{Category: ptr(models.CategoryHome)})
	assertIDs(t, env.mgr.GetFiltered(), 3, 5)

	env.mgr.Delete(3)
	assertIDs(t, env.mgr.GetFiltered(), 5)
}

// --- Sorting ---

func TestSortTasks_Priority(t *testing.T) {
	env := newTestManager(t)
	mustCreate(t, env.mgr, TaskFields{Title: ptr("m1"), Priority: ptr(models.PriorityMedium)})
	mustCreate(t, env.mgr, TaskFields{Title: ptr("l1"), Priority: ptr(models.PriorityLow)})
	mustCreate(t, env.mgr, TaskFields{Title: ptr("h1"), Priority: ptr(models.PriorityHigh)})
	mustCreate(t, env.mgr, TaskFields{Title: ptr("m2"), Priority: ptr(models.PriorityMedium)})
	mustCreate(t, env.mgr, TaskFields{Title: ptr("h2"), Priority: ptr(models.PriorityHigh)})

	assertIDs(t, env.mgr.SortTasks(SortByPriority, true), 3, 5, 1, 4, 2)
	assertIDs(t, env.mgr.SortTasks(SortByPriority, false), 2, 1, 4, 3, 5)
}

func TestSortTasks_DueDateAbsentLast(t *testing.T) {
	env := newTestManager(t)
	today := env.clock.today()
	mustCreate(t, env.mgr, titled("none"))
	mustCreate(t, env.mgr, TaskFields{Title: ptr("later"), DueDate: ptr(today.AddDays(5))})
	mustCreate(t, env.mgr, TaskFields{Title: ptr("sooner"), DueDate: ptr(today.AddDays(1))})
	mustCreate(t, env.mgr, titled("none2"))

	assertIDs(t, env.mgr.SortTasks(SortByDueDate, false), 3, 2, 1, 4)
	assertIDs(t, env.mgr.SortTasks(SortByDueDate, true), 1, 4, 2, 3)
}

func TestSortTasks_TitleAndFallback(t *testing.T) {
	env := newTestManager(t)
	mustCreate(t, env.mgr, titled("banana"))
	mustCreate(t, env.mgr, titled("Apple"))
	mustCreate(t, env.mgr, titled("cherry"))

	assertIDs(t, env.mgr.SortTasks(SortByTitle, false), 2, 1, 3)
	assertIDs(t, env.mgr.SortTasks(SortByCreationDate, true), 3, 2, 1)
	assertIDs(t, env.mgr.SortTasks("bogus", false), 1, 2, 3)
}

func TestSortTasks_UsesFilteredViewWithoutReplacingIt(t *testing.T) {
	env := newTestManager(t)
	seedFilterTasks(t, env.mgr)
	env.mgr.ApplyFilters(FilterCriteria{Category: models.CategoryWork})

	assertIDs(t, env.mgr.SortTasks(SortByPriority, false), 3, 1)
	assertIDs(t, env.mgr.GetFiltered(), 1, 3)

	assertIDs(t, env.mgr.SortView(SortByPriority, false), 3, 1)
	assertIDs(t, env.mgr.GetFiltered(), 3, 1)
}

// --- Load / Save ---

func TestLoad_FailureStartsEmpty(t *testing.T) {
	store := &inMemoryStore{loadErr: errors.New("unexpected end of JSON input")}
	logger := &recordingLogger{}
	mgr := NewTaskManager(EngineConfig{Store: store, Logger: logger})

	if len(mgr.GetAll()) != 0 {
		t.Fatal("expected empty collection")
	}
	if logger.count(EventTaskLoadFailed) != 1 {
		t.Error("expected a task.load_failed event")
	}
	if err := mgr.Load(); !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence from Load, got %v", err)
	}
}

func TestLoad_DuplicateIDsRejected(t *testing.T) {
	now := time.Now()
	store := &inMemoryStore{tasks: []models.Task{
		{ID: 1, Title: "a", Status: models.StatusNotStarted, Priority: models.PriorityLow, Created: now, Updated: now},
		{ID: 1, Title: "b", Status: models.StatusNotStarted, Priority: models.PriorityLow, Created: now, Updated: now},
	}}
	mgr := NewTaskManager(EngineConfig{Store: store})
	if len(mgr.GetAll()) != 0 {
		t.Fatal("expected empty collection for a store with duplicate ids")
	}
}

func TestLoad_ContinuesIDSequence(t *testing.T) {
	now := time.Now()
	store := &inMemoryStore{tasks: []models.Task{
		{ID: 41, Title: "a", Status: models.StatusNotStarted, Priority: models.PriorityLow, Created: now, Updated: now},
		{ID: 7, Title: "b", Status: models.StatusCompleted, Priority: models.PriorityHigh, Created: now, Updated: now},
	}}
	mgr := NewTaskManager(EngineConfig{Store: store})

	assertIDs(t, mgr.GetAll(), 41, 7)
	assertIDs(t, mgr.GetFiltered(), 41, 7)
	if task := mustCreate(t, mgr, titled("c")); task.ID != 42 {
		t.Errorf("new id = %d, want 42", task.ID)
	}
}

func TestLoad_IDFloorPreventsReuse(t *testing.T) {
	tests := []struct {
		name   string
		stored []models.Task
		floor  int
		err    error
		wantID int
	}{
		{"floor above stored ids", []models.Task{{ID: 2}}, 5, nil, 6},
		{"stored ids above floor", []models.Task{{ID: 9}}, 5, nil, 10},
		{"empty store", nil, 3, nil, 4},
		{"floor unavailable", []models.Task{{ID: 2}}, 0, errors.New("log unreadable"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			for i := range tt.stored {
				tt.stored[i].Title = "stored"
				tt.stored[i].Status = models.StatusNotStarted
				tt.stored[i].Priority = models.PriorityLow
				tt.stored[i].Created, tt.stored[i].Updated = now, now
			}
			mgr := NewTaskManager(EngineConfig{
				Store:   &inMemoryStore{tasks: tt.stored},
				IDFloor: func() (int, error) { return tt.floor, tt.err },
			})
			if task := mustCreate(t, mgr, titled("next")); task.ID != tt.wantID {
				t.Errorf("new id = %d, want %d", task.ID, tt.wantID)
			}
		})
	}
}

func TestLoad_FailureKeepsIDFloor(t *testing.T) {
	store := &inMemoryStore{loadErr: errors.New("corrupt")}
	mgr := NewTaskManager(EngineConfig{Store: store, IDFloor: func() (int, error) { return 12, nil }})
	if task := mustCreate(t, mgr, titled("after corrupt load")); task.ID != 13 {
		t.Errorf("new id = %d, want 13", task.ID)
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	env := newTestManager(t)
	env.store.saveErr = errors.New("disk full")

	task, err := env.mgr.Create(titled("x"))
	if err != nil {
		t.Fatalf("create must succeed despite save failure: %v", err)
	}
	if _, ok := env.mgr.FindByID(task.ID); !ok {
		t.Fatal("in-memory task lost")
	}
	if env.logger.count(EventTaskSaveFailed) != 1 {
		t.Error("expected a task.save_failed event")
	}
	if err := env.mgr.Close(); !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence from Close, got %v", err)
	}
}

func TestStats(t *testing.T) {
	env := newTestManager(t)
	today := env.clock.today()
	mustCreate(t, env.mgr, TaskFields{Title: ptr("soon"), DueDate: ptr(today.AddDays(1))})
	late := mustCreate(t, env.mgr, TaskFields{Title: ptr("late"), DueDate: ptr(today)})
	done := mustCreate(t, env.mgr, titled("done"))
	env.mgr.ChangeStatus(done.ID, models.StatusCompleted)
	env.mgr.ApplyFilters(FilterCriteria{Status: models.StatusNotStarted})

	env.clock.now = env.clock.now.AddDate(0, 0, 1)
	s := env.mgr.Stats()

	if s.Total != 3 || s.Filtered != 2 || s.Completed != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Overdue != 1 {
		t.Errorf("overdue = %d, want 1 (task %d)", s.Overdue, late.ID)
	}
	if s.DueSoon != 1 {
		t.Errorf("due soon = %d, want 1", s.DueSoon)
	}
	if s.ByStatus[models.StatusNotStarted] != 2 {
		t.Errorf("by status = %v", s.ByStatus)
	}
}
