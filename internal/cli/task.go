package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new task",
	Long: `Create a new task with the given title. New tasks start as NotStarted.

Words after "add" are joined into the title, so quoting is optional.

Examples:
  todo add Buy milk
  todo add "Pay rent" --priority high --due 2026-11-01 --category home`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		fields, err := fieldsFromFlags(cmd)
		if err != nil {
			return err
		}
		title := strings.Join(args, " ")
		fields.Title = &title

		task, err := TaskMgr.Create(fields)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created task %d\n", task.ID)
		printTaskDetail(out, task, models.DateOf(now()))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a task",
	Long: `Change one or more fields of a task. Only the flags you pass are
changed; pass an empty value to --category or --due to clear it.

Examples:
  todo edit 3 --title "Pay rent and bills"
  todo edit 3 --due ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		fields, err := fieldsFromFlags(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			fields.Title = &title
		}
		if fields == (core.TaskFields{}) {
			return fmt.Errorf("nothing to change: pass at least one of --title, --description, --category, --priority, --due")
		}

		task, err := TaskMgr.Update(id, fields)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Updated task %d\n", task.ID)
		printTaskDetail(out, task, models.DateOf(now()))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set the status of a task",
	Long: `Move a task to another status: NotStarted, InProgress, Completed or
Postponed. Any transition is allowed. Labels are case-insensitive and may
contain spaces, so "in progress" works too.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return changeStatus(cmd, id, status)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as Completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		return changeStatus(cmd, id, models.StatusCompleted)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if !TaskMgr.Delete(id) {
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d does not exist.\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show all fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		task, ok := TaskMgr.FindByID(id)
		if !ok {
			return fmt.Errorf("task %d: %w", id, core.ErrNotFound)
		}
		printTaskDetail(cmd.OutOrStdout(), task, models.DateOf(now()))
		return nil
	},
}

func changeStatus(cmd *cobra.Command, id int, status models.TaskStatus) error {
	if TaskMgr == nil {
		return fmt.Errorf("task manager not initialized")
	}

	task, changed, err := TaskMgr.ChangeStatus(id, status)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Task %d is already %s.\n", task.ID, status.Label())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s.\n", task.ID, status.Label())
	return nil
}

// fieldsFromFlags collects the field flags shared by add and edit. Only
// flags set on the command line are present in the result.
func fieldsFromFlags(cmd *cobra.Command) (core.TaskFields, error) {
	var fields core.TaskFields
	flags := cmd.Flags()

	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		fields.Description = &description
	}
	if flags.Changed("category") {
		label, _ := flags.GetString("category")
		category := models.ParseCategory(label)
		fields.Category = &category
	}
	if flags.Changed("priority") {
		label, _ := flags.GetString("priority")
		priority, err := models.ParsePriority(label)
		if err != nil {
			return core.TaskFields{}, err
		}
		fields.Priority = &priority
	}
	if flags.Changed("due") {
		value, _ := flags.GetString("due")
		due, err := core.ParseDueDate(value)
		if err != nil {
			return core.TaskFields{}, err
		}
		fields.DueDate = &due
	}
	return fields, nil
}

func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, errors.New("task id must be a positive number, got " + strconv.Quote(arg))
	}
	return id, nil
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "Free-form description")
	cmd.Flags().StringP("category", "c", "", "Category (Work, Personal, Health, Learning, Home, Other, or your own)")
	cmd.Flags().StringP("priority", "p", "", "Priority (High, Medium, Low)")
	cmd.Flags().String("due", "", "Due date as YYYY-MM-DD")
}

func init() {
	addFieldFlags(addCmd)
	addFieldFlags(editCmd)
	editCmd.Flags().StringP("title", "t", "", "New title")
	registerFieldCompletions(addCmd)
	registerFieldCompletions(editCmd)

	editCmd.ValidArgsFunction = completeTaskIDs()
	showCmd.ValidArgsFunction = completeTaskIDs()
	rmCmd.ValidArgsFunction = completeTaskIDs()
	doneCmd.ValidArgsFunction = completeTaskIDs(models.StatusCompleted)
	statusCmd.ValidArgsFunction = completeStatusArgs

	for _, cmd := range []*cobra.Command{addCmd, editCmd, statusCmd, doneCmd, rmCmd, showCmd} {
		rootCmd.AddCommand(cmd)
	}
}
