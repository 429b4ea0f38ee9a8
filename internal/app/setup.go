package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"google.golang.org/genai"

	"github.com/eeviriyi/site/db"
	"github.com/eeviriyi/site/internal/calendar"
	"github.com/eeviriyi/site/internal/chat"
	"github.com/eeviriyi/site/internal/config"
	"github.com/eeviriyi/site/internal/device"
	"github.com/eeviriyi/site/internal/knowledge"
	"github.com/eeviriyi/site/internal/notify"
	"github.com/eeviriyi/site/internal/poem"
	"github.com/eeviriyi/site/internal/posts"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	a := &App{Config: cfg}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				slog.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder, err := provideEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Knowledge = knowledge.NewStore(pool, embedder, slog.Default())

	a.Chats = chat.NewStore(pool, slog.Default())
	a.Calendar = calendar.NewStore(pool, slog.Default())
	a.Devices = device.NewStore(pool, slog.Default())

	registry, err := posts.NewRegistry(cfg.PostsDir, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("loading posts: %w", err)
	}
	a.Posts = registry

	a.Poem = poem.NewClient(slog.Default())
	a.Notifier = notify.NewServerChan(cfg.ServerChanKey, slog.Default())

	agent, err := chat.NewAgent(chat.Config{
		Genkit:   g,
		Search:   a.Knowledge,
		Notifier: a.Notifier,
		Logger:   slog.Default(),
		Model:    cfg.FullChatModel(),
		MaxTurns: cfg.MaxTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}
	a.Agent = agent

	return a, nil
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
// The pool registers pgvector's types on every connection so embedding
// columns scan into pgvector.Vector.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideGenkit initializes Genkit with the Gemini plugin. The plugin reads
// GEMINI_API_KEY from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	return g, nil
}

// provideEmbedder creates the embedding client for the knowledge base.
// Embeddings go through the genai SDK directly rather than a Genkit
// embedder so the task type and output dimensionality stay explicit.
func provideEmbedder(ctx context.Context, cfg *config.Config) (*knowledge.GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return knowledge.NewGeminiEmbedder(client, cfg.EmbedderModel), nil
}
