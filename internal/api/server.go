// Package api provides the site's HTTP API.
//
// Endpoints:
//
//	POST   /api/chat                     → assistant turn (SSE stream)
//	GET    /api/chats                    → chat history list
//	GET    /api/chats/{id}               → chat messages
//	DELETE /api/chats/{id}               → delete chat
//	GET    /api/events                   → two-week calendar window
//	POST   /api/events                   → create event
//	DELETE /api/events/{id}              → delete event
//	PATCH  /api/events/{id}/completion   → toggle completion
//	POST   /api/device-stats             → upload device snapshot
//	GET    /api/device-stats             → snapshots from last 24h
//	GET    /api/posts                    → post list (newest first)
//	GET    /api/posts/{slug}             → post metadata + rendered body
//	GET    /api/tags                     → all tags
//	GET    /api/tags/{tag}               → posts with tag
//	GET    /api/poem                     → proxied daily poem
//	GET    /api/preferences              → timezone preferences cookie
//	PUT    /api/preferences              → update preferences cookie
//	GET    /health, GET /ready           → probes
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - chat.go: assistant endpoint (SSE)
//   - history.go: chat history endpoints
//   - events.go: calendar endpoints
//   - devicestats.go: device telemetry endpoints
//   - posts.go: blog endpoints
//   - poem.go: poem proxy endpoint
//   - preferences.go: timezone preference cookie
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Chat turns stream model output, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the site's HTTP server.
type Server struct {
	mux     *http.ServeMux
	limiter *rate.Limiter

	// Handlers
	health      *HealthHandler
	chat        *ChatHandler
	history     *HistoryHandler
	events      *EventsHandler
	deviceStats *DeviceStatsHandler
	posts       *PostsHandler
	poem        *PoemHandler
	preferences *PreferencesHandler
}

// Handlers carries the per-domain handlers a Server routes to.
type Handlers struct {
	Health      *HealthHandler
	Chat        *ChatHandler
	History     *HistoryHandler
	Events      *EventsHandler
	DeviceStats *DeviceStatsHandler
	Posts       *PostsHandler
	Poem        *PoemHandler
	Preferences *PreferencesHandler
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(h Handlers) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:         mux,
		limiter:     rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
		health:      h.Health,
		chat:        h.Chat,
		history:     h.History,
		events:      h.Events,
		deviceStats: h.DeviceStats,
		posts:       h.Posts,
		poem:        h.Poem,
		preferences: h.Preferences,
	}

	for _, reg := range []interface{ RegisterRoutes(*http.ServeMux) }{
		s.health, s.chat, s.history, s.events, s.deviceStats, s.posts, s.poem, s.preferences,
	} {
		reg.RegisterRoutes(mux)
	}

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → rate limit → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware, rateLimitMiddleware(s.limiter))
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
