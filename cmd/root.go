// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-core-stack/estimate-gateway/pkg/config"
	"github.com/go-core-stack/estimate-gateway/pkg/estimate"
	"github.com/go-core-stack/estimate-gateway/pkg/flow"
)

// cfg is loaded once before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "estimate-gateway",
	Short: "Web front end and proxy for Power Automate estimate flows",
	Long: `estimate-gateway relays estimate registrations and list queries to
Power Automate HTTP-trigger flows and serves the pages that use them.

Flow URLs and keys are read from POWERAPP_* environment variables,
optionally seeded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		level, err := zerolog.ParseLevel(loaded.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", loaded.LogLevel, err)
		}
		log.Logger = log.Level(level)

		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd, listCmd)
}

func newService() *estimate.Service {
	return estimate.NewService(cfg, flow.New(cfg))
}
