package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xela07ax/dash33/internal/infra"
)

// version подменяется при сборке: -ldflags "-X main.version=v0.3.0"
var version = "dev"

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash33",
		Short: "Bitcoin dashboard metrics API",
		Long: `dash33 serves Bitcoin-network and system metrics over HTTP.

Configuration is read from config.yaml (or --config) and DASH33_* environment
variables, e.g. DASH33_API_CONFIG_PORT=8080.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := infra.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.DatabaseURL = infra.RedactURL(cfg.DatabaseURL)

			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dash33", version)
		},
	}
}
