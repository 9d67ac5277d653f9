package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rodeoai/ingest/cli/internal/client"
	"github.com/rodeoai/ingest/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rodeoctl",
	Short: "RodeoAI ingestion CLI",
	Long: `rodeoctl is the command-line interface for the RodeoAI ingestion gateway.

Upload competitive-event data files, inspect the manual review queue,
and check gateway processing statistics from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rodeoctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use")
	rootCmd.PersistentFlags().String("gateway-url", "", "gateway URL (overrides profile)")
	rootCmd.PersistentFlags().String("api-key", "", "gateway API key (overrides profile)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}
}

// gatewayClient resolves connection settings from flags, falling back to
// the active profile.
func gatewayClient(cmd *cobra.Command) (*client.GatewayClient, error) {
	gatewayURL, _ := cmd.Flags().GetString("gateway-url")
	apiKey, _ := cmd.Flags().GetString("api-key")

	if gatewayURL == "" || apiKey == "" {
		profileName, _ := cmd.Flags().GetString("profile")
		if profile, err := cfg.GetProfile(profileName); err == nil {
			if gatewayURL == "" {
				gatewayURL = profile.GatewayURL
			}
			if apiKey == "" {
				apiKey = profile.APIKey
			}
		}
	}

	if gatewayURL == "" {
		gatewayURL = "http://localhost:8095"
	}

	return client.NewGatewayClient(gatewayURL, apiKey), nil
}

func jsonOutput(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}
