// Package app provides application initialization and dependency injection.
//
// App is the container that wires the backend together: the database pool,
// Genkit, the knowledge store, the chat agent, and the content services the
// HTTP API serves.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eeviriyi/site/internal/calendar"
	"github.com/eeviriyi/site/internal/chat"
	"github.com/eeviriyi/site/internal/config"
	"github.com/eeviriyi/site/internal/device"
	"github.com/eeviriyi/site/internal/knowledge"
	"github.com/eeviriyi/site/internal/notify"
	"github.com/eeviriyi/site/internal/poem"
	"github.com/eeviriyi/site/internal/posts"
)

// App is the core application container.
type App struct {
	// Configuration
	Config *config.Config

	// Core services
	Genkit *genkit.Genkit
	DBPool *pgxpool.Pool

	// Domain stores and clients
	Knowledge *knowledge.Store
	Chats     *chat.Store
	Calendar  *calendar.Store
	Devices   *device.Store
	Posts     *posts.Registry
	Poem      *poem.Client
	Notifier  *notify.ServerChan

	// Agent is the conversational assistant backing POST /api/chat.
	Agent *chat.Agent
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}

	return nil
}
