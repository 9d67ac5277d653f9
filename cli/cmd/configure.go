package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodeoai/ingest/cli/pkg/output"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Save gateway connection settings",
	Long:  "Save the gateway URL and API key to a named profile",
	Example: `  rodeoctl configure --url http://localhost:8095 --key secret
  rodeoctl configure --name staging --url https://ingest.staging.rodeoai.dev --key secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		gatewayURL, _ := cmd.Flags().GetString("url")
		apiKey, _ := cmd.Flags().GetString("key")

		if gatewayURL == "" {
			return fmt.Errorf("--url is required")
		}

		if err := cfg.SaveProfile(name, gatewayURL, apiKey); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}

		output.Success("Profile '%s' saved", name)
		return nil
	},
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Profiles) == 0 {
			output.Info("No profiles configured")
			return nil
		}

		table := output.NewTable("NAME", "GATEWAY URL", "ACTIVE")
		for name, profile := range cfg.Profiles {
			active := ""
			if name == cfg.CurrentProfile {
				active = "*"
			}
			table.AddRow(name, profile.GatewayURL, active)
		}
		table.Render()
		return nil
	},
}

var configureRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveProfile(args[0]); err != nil {
			return err
		}
		output.Success("Profile '%s' removed", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureRemoveCmd)

	configureCmd.Flags().String("name", "default", "profile name")
	configureCmd.Flags().String("url", "", "gateway URL")
	configureCmd.Flags().String("key", "", "gateway API key")
}
