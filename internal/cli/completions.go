package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// completeTaskIDs completes the first argument with task ids, described by
// their titles. Tasks with an excluded status are left out.
func completeTaskIDs(excludeStatuses ...models.TaskStatus) cobra.CompletionFunc {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TaskMgr == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.TaskStatus]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, task := range TaskMgr.GetAll() {
			if exclude[task.Status] {
				continue
			}
			id := strconv.Itoa(task.ID)
			if strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+task.Title)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeStatusArgs completes "status <id> <status>": ids first, then
// status labels.
func completeStatusArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeTaskIDs()(cmd, args, toComplete)
	}
	if len(args) == 1 {
		return completeStatuses(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func completeStatuses(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var labels []string
	for _, s := range models.AllStatuses() {
		labels = append(labels, s.Label())
	}
	return filterPrefix(labels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completePriorities(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var labels []string
	for _, p := range models.AllPriorities() {
		labels = append(labels, p.Label())
	}
	return filterPrefix(labels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeCategories offers the predefined categories plus any custom
// category already in use.
func completeCategories(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	seen := make(map[string]bool)
	var labels []string
	add := func(c models.Category) {
		if label := c.Label(); label != "" && !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	for _, c := range models.KnownCategories() {
		add(c)
	}
	if TaskMgr != nil {
		for _, t := range TaskMgr.GetAll() {
			add(t.Category)
		}
	}
	return filterPrefix(labels, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeSortKeys(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys := []string{
		string(core.SortByDueDate),
		string(core.SortByPriority),
		string(core.SortByCreationDate),
		string(core.SortByTitle),
	}
	return filterPrefix(keys, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// filterPrefix keeps the values starting with prefix, ignoring case.
func filterPrefix(values []string, prefix string) []string {
	var out []string
	lower := strings.ToLower(prefix)
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			out = append(out, v)
		}
	}
	return out
}

// registerFieldCompletions adds completions for the task field flags that
// cmd defines.
func registerFieldCompletions(cmd *cobra.Command) {
	completions := map[string]cobra.CompletionFunc{
		"status":   completeStatuses,
		"priority": completePriorities,
		"category": completeCategories,
		"sort":     completeSortKeys,
	}
	for name, fn := range completions {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, fn)
		}
	}
}
