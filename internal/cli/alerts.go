package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsNotify bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active alerts and warnings",
	Long: `Evaluate alert conditions against the task list and display any triggered alerts.

Alerts flag overdue tasks, tasks due within two days, tasks stuck in
InProgress, and too many open tasks. With --notify the alerts are also posted
to the Slack webhook configured as notifications.slack_webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}
		if alertsNotify && Notifier == nil {
			return fmt.Errorf("notifier not configured: set notifications.slack_webhook in .todoconfig")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
			return nil
		}

		fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
			fmt.Fprintf(out, "         triggered at %s\n\n", alert.TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"))
		}

		if alertsNotify {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := Notifier.Notify(ctx, alerts); err != nil {
				return fmt.Errorf("sending alert notification: %w", err)
			}
			fmt.Fprintf(out, "Sent %d alert(s) to Slack.\n", len(alerts))
		}

		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Post the alerts to the configured Slack webhook")
	rootCmd.AddCommand(alertsCmd)
}
