package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/core"
	"github.com/valter-silva-au/todo-list/pkg/models"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var (
	initStorage  string
	initPriority string
	initNoEvents bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a .todoconfig.yaml for a task directory",
	Long: `Write a starter .todoconfig.yaml into the given directory (default: the
current directory). todo finds the nearest .todoconfig by walking up from
the working directory, so every command run below it uses this task list.

An existing configuration is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		priority, err := models.ParsePriority(initPriority)
		if err != nil {
			return err
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:        absPath,
			StorageFormat:   models.StorageFormat(initStorage),
			DefaultPriority: priority,
			DisableEvents:   initNoEvents,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, p := range result.Created {
			fmt.Fprintf(out, "Created %s\n", p)
		}
		for _, p := range result.Skipped {
			fmt.Fprintf(out, "Skipped %s (already exists)\n", p)
		}
		fmt.Fprintf(out, "Task directory ready at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initStorage, "storage", "json", "Storage format: json, yaml or sqlite")
	initCmd.Flags().StringVar(&initPriority, "priority", "Medium", "Default priority for new tasks")
	initCmd.Flags().BoolVar(&initNoEvents, "no-events", false, "Disable the event log")
	registerFieldCompletions(initCmd)
	_ = initCmd.RegisterFlagCompletionFunc("storage", cobra.FixedCompletions(
		[]string{"json", "yaml", "sqlite"}, cobra.ShellCompDirectiveNoFileComp))
	rootCmd.AddCommand(initCmd)
}
