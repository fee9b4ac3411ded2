package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

var testNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

type memoryStore struct {
	tasks []models.Task
	saves int
}

func (m *memoryStore) Load() ([]models.Task, error) {
	return append([]models.Task(nil), m.tasks...), nil
}

func (m *memoryStore) Save(tasks []models.Task) error {
	m.tasks = append([]models.Task(nil), tasks...)
	m.saves++
	return nil
}

// setupEngine installs a task manager over an in-memory store holding tasks,
// with the clock fixed at testNow, and restores the globals on cleanup.
func setupEngine(t *testing.T, tasks ...models.Task) *memoryStore {
	t.Helper()

	origTaskMgr, origNow := TaskMgr, now
	t.Cleanup(func() {
		TaskMgr = origTaskMgr
		now = origNow
	})

	store := &memoryStore{tasks: tasks}
	clock := func() time.Time { return testNow }
	TaskMgr = core.NewTaskManager(core.EngineConfig{Store: store, Now: clock})
	now = clock
	return store
}

func sampleTasks() []models.Task {
	created := testNow.Add(-72 * time.Hour)
	today := models.DateOf(testNow)
	return []models.Task{
		{ID: 1, Title: "Pay rent", Category: models.CategoryHome, Priority: models.PriorityHigh,
			DueDate: today.AddDays(-1), Status: models.StatusInProgress, Created: created, Updated: created},
		{ID: 2, Title: "book dentist", Category: models.CategoryHealth, Priority: models.PriorityLow,
			DueDate: today.AddDays(1), Status: models.StatusNotStarted, Created: created.Add(time.Hour), Updated: created.Add(time.Hour)},
		{ID: 3, Title: "Read Go book", Category: models.CategoryLearning, Priority: models.PriorityMedium,
			Status: models.StatusCompleted, Created: created.Add(2 * time.Hour), Updated: created.Add(2 * time.Hour)},
	}
}

// runCommand executes the root command with args and returns everything
// written to stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	resetFlags(rootCmd)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so that values set by one
// run do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
