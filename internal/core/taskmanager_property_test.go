package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/valter-silva-au/todo-list/pkg/models"
	"pgregory.net/rapid"
)

func priorityGenerator() *rapid.Generator[models.Priority] {
	return rapid.SampledFrom(models.AllPriorities())
}

func statusGenerator() *rapid.Generator[models.TaskStatus] {
	return rapid.SampledFrom(models.AllStatuses())
}

func categoryGenerator() *rapid.Generator[models.Category] {
	return rapid.SampledFrom(append([]models.Category{""}, models.KnownCategories()...))
}

// fieldsGenerator draws a valid set of fields for a new task. Due dates are
// never before the fake clock's start date.
func fieldsGenerator(today models.Date) *rapid.Generator[TaskFields] {
	return rapid.Custom(func(t *rapid.T) TaskFields {
		fields := TaskFields{
			Title:    ptr(rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,30}`).Draw(t, "title")),
			Category: ptr(categoryGenerator().Draw(t, "category")),
			Priority: ptr(priorityGenerator().Draw(t, "priority")),
		}
		if rapid.Bool().Draw(t, "hasDue") {
			fields.DueDate = ptr(today.AddDays(rapid.IntRange(0, 60).Draw(t, "dueOffset")))
		}
		return fields
	})
}

// seededManager builds a manager holding n random tasks, with a few deletes
// mixed in so ids are not contiguous.
func seededManager(rt *rapid.T) (TaskManager, *inMemoryStore) {
	clock := newFakeClock()
	store := &inMemoryStore{}
	mgr := NewTaskManager(EngineConfig{Store: store, Now: clock.Now})
	today := clock.today()

	n := rapid.IntRange(0, 25).Draw(rt, "n")
	for i := 0; i < n; i++ {
		if _, err := mgr.Create(fieldsGenerator(today).Draw(rt, fmt.Sprintf("fields%d", i))); err != nil {
			rt.Fatalf("create %d: %v", i, err)
		}
		if rapid.IntRange(0, 4).Draw(rt, fmt.Sprintf("del%d", i)) == 0 {
			all := mgr.GetAll()
			mgr.Delete(all[rapid.IntRange(0, len(all)-1).Draw(rt, fmt.Sprintf("delIdx%d", i))].ID)
		}
	}
	return mgr, store
}

// Feature: todo-list, Property 1: Unique IDs
// For any sequence of creates and deletes, every created task SHALL receive
// an id never used before, with status NotStarted and equal timestamps.
func TestProperty_CreateAssignsUniqueIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clock := newFakeClock()
		mgr := NewTaskManager(EngineConfig{Store: &inMemoryStore{}, Now: clock.Now})
		used := map[int]bool{}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			all := mgr.GetAll()
			if len(all) > 0 && rapid.Bool().Draw(rt, fmt.Sprintf("delete%d", i)) {
				mgr.Delete(all[rapid.IntRange(0, len(all)-1).Draw(rt, fmt.Sprintf("idx%d", i))].ID)
				continue
			}
			task, err := mgr.Create(fieldsGenerator(clock.today()).Draw(rt, fmt.Sprintf("fields%d", i)))
			if err != nil {
				rt.Fatalf("create: %v", err)
			}
			if used[task.ID] {
				rt.Fatalf("id %d reused", task.ID)
			}
			used[task.ID] = true
			if task.Status != models.StatusNotStarted {
				rt.Fatalf("status = %q", task.Status)
			}
			if !task.Created.Equal(task.Updated) {
				rt.Fatalf("created %v != updated %v", task.Created, task.Updated)
			}
		}
	})
}

// Feature: todo-list, Property 2: Empty Filter Is Identity
// Applying empty criteria SHALL return every task in collection order.
func TestProperty_EmptyFilterIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr, _ := seededManager(rt)
		mgr.ApplyFilters(FilterCriteria{Category: categoryGenerator().Draw(rt, "narrow")})

		got := mgr.ApplyFilters(FilterCriteria{})
		all := mgr.GetAll()
		if fmt.Sprint(ids(got)) != fmt.Sprint(ids(all)) {
			rt.Fatalf("filtered %v != all %v", ids(got), ids(all))
		}
	})
}

// Feature: todo-list, Property 3: Filter Soundness
// Every task in a filtered view SHALL match the criteria, and every matching
// task SHALL appear, in collection order.
func TestProperty_FilterSoundness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr, _ := seededManager(rt)
		criteria := FilterCriteria{
			Category: categoryGenerator().Draw(rt, "category"),
			Priority: rapid.SampledFrom(append([]models.Priority{""}, models.AllPriorities()...)).Draw(rt, "priority"),
		}

		var want []int
		for _, task := range mgr.GetAll() {
			if criteria.Matches(task) {
				want = append(want, task.ID)
			}
		}
		got := ids(mgr.ApplyFilters(criteria))
		if fmt.Sprint(got) != fmt.Sprint(want) {
			rt.Fatalf("filter %+v: got %v, want %v", criteria, got, want)
		}
	})
}

// Feature: todo-list, Property 4: Stable Priority Sort
// Sorting by priority descending SHALL order High before Medium before Low and
// keep the original relative order among equal priorities.
func TestProperty_PrioritySortStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr, _ := seededManager(rt)
		original := mgr.GetFiltered()
		position := map[int]int{}
		for i, task := range original {
			position[task.ID] = i
		}

		sorted := mgr.SortTasks(SortByPriority, true)
		if len(sorted) != len(original) {
			rt.Fatalf("sorted %d tasks, want %d", len(sorted), len(original))
		}
		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if prev.Priority.Rank() < cur.Priority.Rank() {
				rt.Fatalf("%s before %s", prev.Priority, cur.Priority)
			}
			if prev.Priority == cur.Priority && position[prev.ID] > position[cur.ID] {
				rt.Fatalf("tie between %d and %d not stable", prev.ID, cur.ID)
			}
		}
	})
}

// Feature: todo-list, Property 5: Undated Tasks Sort Last
// Sorting by due date ascending SHALL place every task without a due date
// after all tasks with one, dated tasks in non-decreasing order.
func TestProperty_DueDateSortUndatedLast(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr, _ := seededManager(rt)
		sorted := mgr.SortTasks(SortByDueDate, false)

		seenUndated := false
		for i, task := range sorted {
			if !task.HasDueDate() {
				seenUndated = true
				continue
			}
			if seenUndated {
				rt.Fatalf("dated task %d after an undated one", task.ID)
			}
			if i > 0 && task.DueDate.Before(sorted[i-1].DueDate) {
				rt.Fatalf("due dates out of order at %d", i)
			}
		}
	})
}

// Feature: todo-list, Property 6: Idempotent Status Change
// Changing a task to the same status twice SHALL touch the modification
// date at most once.
func TestProperty_ChangeStatusIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		clock := newFakeClock()
		store := &inMemoryStore{}
		mgr := NewTaskManager(EngineConfig{Store: store, Now: clock.Now})
		task, err := mgr.Create(TaskFields{Title: ptr("x")})
		if err != nil {
			rt.Fatalf("create: %v", err)
		}

		status := statusGenerator().Draw(rt, "status")
		first, _, err := mgr.ChangeStatus(task.ID, status)
		if err != nil {
			rt.Fatalf("first change: %v", err)
		}
		saves := store.saves
		second, changed, err := mgr.ChangeStatus(task.ID, status)
		if err != nil {
			rt.Fatalf("second change: %v", err)
		}
		if changed || !second.Updated.Equal(first.Updated) || store.saves != saves {
			rt.Fatalf("second change to %s was not a no-op", status)
		}
	})
}

// Feature: todo-list, Property 7: Timestamps Ordered
// For any task and any sequence of updates, the modification date SHALL
// never fall before the creation date, even if the clock steps backwards.
func TestProperty_ModificationNeverBeforeCreation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
		offsets := rapid.SliceOfN(rapid.IntRange(-3600, 3600), 1, 10).Draw(rt, "offsets")
		i := 0
		now := func() time.Time {
			if i == 0 {
				i++
				return base
			}
			ts := base.Add(time.Duration(offsets[(i-1)%len(offsets)]) * time.Second)
			i++
			return ts
		}
		mgr := NewTaskManager(EngineConfig{Store: &inMemoryStore{}, Now: now})
		task, err := mgr.Create(TaskFields{Title: ptr("x")})
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		for j := range offsets {
			got, err := mgr.Update(task.ID, TaskFields{Description: ptr(fmt.Sprint(j))})
			if err != nil {
				rt.Fatalf("update: %v", err)
			}
			if got.Updated.Before(got.Created) {
				rt.Fatalf("updated %v before created %v", got.Updated, got.Created)
			}
		}
	})
}
