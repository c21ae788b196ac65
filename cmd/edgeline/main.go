// Package main provides the edgeline server and its admin commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "edgeline",
		Short:         "Edge session import and report server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configPath == "" {
				return nil
			}
			if err := os.Setenv("EDGELINE_CONFIG_PATH", configPath); err != nil {
				return fmt.Errorf("failed to set config path: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml or toml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newRosterCmd())
	rootCmd.AddCommand(newAPIKeyCmd())

	return rootCmd
}
