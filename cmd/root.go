// Package cmd implements the site's command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/eeviriyi/site/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "site",
	Short: "Eeviriyi's personal site backend",
	Long: `The backend for eeviriyi.com: the AI assistant, blog, calendar,
device telemetry, and the daily poem proxy.

Running site without a subcommand starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	initLogger()
	return rootCmd.Execute()
}

// initLogger installs the process-wide logger. Level and format come from
// the environment so they work before config loading.
func initLogger() {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("SITE_DEBUG") != "" {
		cfg.Level = slog.LevelDebug
		cfg.AddSource = true
	}
	if os.Getenv("SITE_LOG_JSON") != "" {
		cfg.JSON = true
	}
	slog.SetDefault(log.New(cfg))
}
