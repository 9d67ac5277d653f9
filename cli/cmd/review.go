package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodeoai/ingest/cli/pkg/output"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Manual review queue commands",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions awaiting manual review",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gatewayClient(cmd)
		if err != nil {
			return err
		}

		entries, err := gw.ReviewList()
		if err != nil {
			return fmt.Errorf("failed to fetch review queue: %w", err)
		}

		if jsonOutput(cmd) {
			return output.JSON(entries)
		}

		if len(entries) == 0 {
			output.Info("Review queue is empty")
			return nil
		}

		table := output.NewTable("ID", "FILE", "REASON", "VERDICT", "SCORE", "CREATED")
		for _, e := range entries {
			table.AddRow(
				fmt.Sprintf("%d", e.ID),
				e.Filename,
				e.Reason,
				string(e.Assessment.Verdict),
				fmt.Sprintf("%.2f", e.Assessment.Score),
				e.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
}
