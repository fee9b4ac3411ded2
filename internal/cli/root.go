package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// now is the clock used for overdue and due-soon display.
var now = time.Now

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "todo - a personal task manager",
	Long: `todo keeps a personal task list in a local file.

Tasks have a title, an optional description, category and due date, a
priority (High, Medium, Low) and a status (NotStarted, InProgress, Completed,
Postponed). The list is saved after every change.

Run "todo board" for an interactive view, or "todo mcp serve" to expose the
list to an MCP client.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
