package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo-list/internal/observability"
)

var (
	logSince string
	logType  string
	logLevel string
	logLimit int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent events from the event log",
	Long: `Show the most recent entries of the event log, oldest first.

Every change to the task list is recorded: creations, edits, status changes,
deletions, saves and failed saves. Filter by --type (e.g. task.status_changed)
or --level (INFO, WARN, ERROR).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized (observability may be disabled)")
		}

		since, err := observability.ParseSince(logSince, now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		events, err := EventLog.Read(observability.EventFilter{
			Since: &since,
			Type:  logType,
			Level: strings.ToUpper(logLevel),
		})
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}
		if logLimit > 0 && len(events) > logLimit {
			events = events[len(events)-logLimit:]
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s %-5s %-22s %s\n", e.Time.Local().Format(time.DateTime), e.Level, e.Type, formatEventData(e.Data))
		}
		return nil
	},
}

// formatEventData renders event data as key=value pairs in key order.
func formatEventData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	logCmd.Flags().StringVar(&logSince, "since", "1d", "Time window (e.g. 7d, 24h)")
	logCmd.Flags().StringVar(&logType, "type", "", "Only events of this type")
	logCmd.Flags().StringVar(&logLevel, "level", "", "Only events of this level (INFO, WARN, ERROR)")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Show at most this many events; 0 shows all")
	rootCmd.AddCommand(logCmd)
}
