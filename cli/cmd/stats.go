package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodeoai/ingest/cli/pkg/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show gateway processing statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gatewayClient(cmd)
		if err != nil {
			return err
		}

		report, err := gw.Stats()
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(report)
		}

		output.Info("Uptime: %.0fs", report.UptimeSeconds)

		table := output.NewTable("STATUS", "FILES")
		for status, count := range report.FilesByStatus {
			table.AddRow(status, fmt.Sprintf("%d", count))
		}
		table.Render()

		t := report.Totals
		output.Info("\nRecords: events=%d riders=%d predictions=%d results=%d",
			t.Events, t.Riders, t.Predictions, t.Results)
		output.Info("Pushes: %d ok, %d failed (%.1f%% success)",
			report.Push.Success, report.Push.Error, report.Push.SuccessRate*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
