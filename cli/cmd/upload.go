package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rodeoai/ingest/cli/internal/client"
	"github.com/rodeoai/ingest/cli/pkg/output"
	"github.com/rodeoai/ingest/internal/models"
)

// Extensions the gateway can extract records from. Anything else found
// while walking a directory is skipped rather than rejected server-side.
var uploadExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload data files for processing",
	Long:  "Upload one or more local files, or every supported file in a directory, to the ingestion gateway",
	Example: `  rodeoctl upload results.csv
  rodeoctl upload season_2025.xlsx standings.html
  rodeoctl upload ./exports --no-auto-push`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noAutoPush, _ := cmd.Flags().GetBool("no-auto-push")
		skipDedup, _ := cmd.Flags().GetBool("skip-dedup")
		skipTriage, _ := cmd.Flags().GetBool("skip-triage")

		opts := client.UploadOptions{
			NoAutoPush: noAutoPush,
			SkipDedup:  skipDedup,
			SkipTriage: skipTriage,
		}

		paths, err := collectFiles(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no supported files found")
		}

		gw, err := gatewayClient(cmd)
		if err != nil {
			return err
		}

		if len(paths) == 1 {
			result, err := gw.Upload(paths[0], opts)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}
			return printResult(cmd, result)
		}

		batch, err := gw.UploadBatch(paths, opts)
		if err != nil {
			return fmt.Errorf("batch upload failed: %w", err)
		}
		return printBatch(cmd, batch)
	},
}

// collectFiles expands directory arguments into their supported files.
// Explicitly named files are kept regardless of extension.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if uploadExtensions[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func printResult(cmd *cobra.Command, result *models.ProcessResult) error {
	if jsonOutput(cmd) {
		return output.JSON(result)
	}

	switch result.Status {
	case models.StatusSuccess, models.StatusProcessed:
		output.Success("%s: %s", result.Filename, result.Status)
	case models.StatusNeedsReview:
		output.Warn("%s: routed for manual review", result.Filename)
	default:
		output.Warn("%s: %s", result.Filename, result.Status)
	}

	c := result.Counts
	output.Info("  events=%d riders=%d predictions=%d results=%d",
		c.Events, c.Riders, c.Predictions, c.Results)
	for _, push := range result.PushOutcomes {
		if push.Status == "error" {
			output.Error("  push %s failed: %s", push.Type, push.Error)
		}
	}
	return nil
}

func printBatch(cmd *cobra.Command, batch *models.BatchResult) error {
	if jsonOutput(cmd) {
		return output.JSON(batch)
	}

	table := output.NewTable("FILE", "STATUS", "EVENTS", "RIDERS", "PREDICTIONS", "RESULTS")
	succeeded := 0
	for _, fr := range batch.FileResults {
		status := string(fr.Status)
		if fr.Error != "" {
			status = fmt.Sprintf("%s (%s)", fr.Status, fr.Error)
		}

		var c models.RecordCounts
		if fr.Result != nil {
			c = fr.Result.Counts
		}
		if fr.Status == models.StatusSuccess || fr.Status == models.StatusProcessed {
			succeeded++
		}

		table.AddRow(
			fr.Filename,
			status,
			fmt.Sprintf("%d", c.Events),
			fmt.Sprintf("%d", c.Riders),
			fmt.Sprintf("%d", c.Predictions),
			fmt.Sprintf("%d", c.Results),
		)
	}
	table.Render()

	t := batch.Totals
	output.Info("\n%d/%d files processed; totals: events=%d riders=%d predictions=%d results=%d",
		succeeded, len(batch.FileResults), t.Events, t.Riders, t.Predictions, t.Results)
	return nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().Bool("no-auto-push", false, "extract and validate without pushing downstream")
	uploadCmd.Flags().Bool("skip-dedup", false, "bypass duplicate detection")
	uploadCmd.Flags().Bool("skip-triage", false, "bypass relevance and quality gating")
}
