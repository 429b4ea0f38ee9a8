package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eeviriyi/site/internal/api"
	"github.com/eeviriyi/site/internal/app"
	"github.com/eeviriyi/site/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes the application and starts the HTTP API server.
func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting backend", "version", AppVersion)

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	server := api.NewServer(api.Handlers{
		Health:      api.NewHealthHandler(a.DBPool, logger),
		Chat:        api.NewChatHandler(a.Agent, a.Chats, logger),
		History:     api.NewHistoryHandler(a.Chats, logger),
		Events:      api.NewEventsHandler(a.Calendar, logger),
		DeviceStats: api.NewDeviceStatsHandler(a.Devices, logger),
		Posts:       api.NewPostsHandler(a.Posts, logger),
		Poem:        api.NewPoemHandler(a.Poem, logger),
		Preferences: api.NewPreferencesHandler(logger),
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	return server.Run(ctx, addr)
}
