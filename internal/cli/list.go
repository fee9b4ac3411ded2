package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

var (
	listStatus   string
	listCategory string
	listPriority string
	listSort     string
	listReverse  bool
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks in the order they were created.

Filters combine with AND: --status, --category and --priority each keep only
tasks with exactly that value. --sort orders the filtered list by dueDate
(tasks without a due date last), priority, creationDate or title; --reverse
flips the order. Overdue tasks are marked with "!", tasks due within two
days with "~".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		criteria, err := listCriteria()
		if err != nil {
			return err
		}

		tasks := TaskMgr.ApplyFilters(criteria)
		if listSort != "" {
			tasks = TaskMgr.SortTasks(core.SortKey(listSort), listReverse)
		}

		out := cmd.OutOrStdout()
		today := models.DateOf(now())
		if listJSON {
			records := make([]models.TaskRecord, len(tasks))
			for i, t := range tasks {
				records[i] = t.ToRecord()
			}
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting tasks as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		printTaskTable(out, tasks, today)
		fmt.Fprintf(out, "\n%d of %d task(s)\n", len(tasks), len(TaskMgr.GetAll()))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts",
	Long:  "Show the number of tasks in total, per status, completed, overdue and due within two days.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		stats := TaskMgr.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  %-14s %d\n", "Total:", stats.Total)
		for _, status := range models.AllStatuses() {
			fmt.Fprintf(out, "  %-14s %d\n", status.Label()+":", stats.ByStatus[status])
		}
		fmt.Fprintf(out, "  %-14s %d\n", "Overdue:", stats.Overdue)
		fmt.Fprintf(out, "  %-14s %d\n", "Due soon:", stats.DueSoon)
		return nil
	},
}

func listCriteria() (core.FilterCriteria, error) {
	var criteria core.FilterCriteria
	if listStatus != "" {
		status, err := models.ParseStatus(listStatus)
		if err != nil {
			return criteria, err
		}
		criteria.Status = status
	}
	if listPriority != "" {
		priority, err := models.ParsePriority(listPriority)
		if err != nil {
			return criteria, err
		}
		criteria.Priority = priority
	}
	criteria.Category = models.ParseCategory(listCategory)
	return criteria, nil
}

// printTaskTable prints one line per task: id, due marker, status, priority,
// due date, category and title.
func printTaskTable(w io.Writer, tasks []models.Task, today models.Date) {
	fmt.Fprintf(w, "  %-4s %-1s %-11s %-6s %-10s %-10s %s\n", "ID", "", "STATUS", "PRI", "DUE", "CATEGORY", "TITLE")
	fmt.Fprintf(w, "  %-4s %-1s %-11s %-6s %-10s %-10s %s\n", "--", "", "------", "---", "---", "--------", "-----")
	for _, t := range tasks {
		fmt.Fprintf(w, "  %-4d %-1s %-11s %-6s %-10s %-10s %s\n",
			t.ID, dueMarker(t, today), t.Status.Label(), t.Priority.Label(),
			orDash(t.DueDate.String()), orDash(t.Category.Label()), t.Title)
	}
}

// printTaskDetail prints every field of a task, one per line.
func printTaskDetail(w io.Writer, t models.Task, today models.Date) {
	fmt.Fprintf(w, "  %-12s %d\n", "ID:", t.ID)
	fmt.Fprintf(w, "  %-12s %s\n", "Title:", t.Title)
	if t.Description != "" {
		fmt.Fprintf(w, "  %-12s %s\n", "Description:", strings.ReplaceAll(t.Description, "\n", "\n"+strings.Repeat(" ", 15)))
	}
	fmt.Fprintf(w, "  %-12s %s\n", "Status:", t.Status.Label())
	fmt.Fprintf(w, "  %-12s %s\n", "Priority:", t.Priority.Label())
	fmt.Fprintf(w, "  %-12s %s\n", "Category:", orDash(t.Category.Label()))

	due := orDash(t.DueDate.String())
	switch {
	case t.IsOverdue(today):
		due += " (overdue)"
	case t.IsDueSoon(today):
		due += " (due soon)"
	}
	fmt.Fprintf(w, "  %-12s %s\n", "Due:", due)
	fmt.Fprintf(w, "  %-12s %s\n", "Created:", t.Created.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  %-12s %s\n", "Updated:", t.Updated.Local().Format(time.DateTime))
}

func dueMarker(t models.Task, today models.Date) string {
	switch {
	case t.IsOverdue(today):
		return "!"
	case t.IsDueSoon(today):
		return "~"
	default:
		return ""
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only tasks with this status (NotStarted, InProgress, Completed, Postponed)")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only tasks in this category")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Only tasks with this priority (High, Medium, Low)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort by dueDate, priority, creationDate or title")
	listCmd.Flags().BoolVarP(&listReverse, "reverse", "r", false, "Reverse the sort order")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output tasks as JSON records")
	registerFieldCompletions(listCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}
