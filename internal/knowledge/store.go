// Package knowledge manages the assistant's knowledge base: resource
// ingestion with sentence chunking and embedding, and cosine similarity
// search over PostgreSQL + pgvector.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pgvector/pgvector-go"
)

// Retrieval tuning. Chunks below the similarity threshold are noise for the
// assistant; four chunks fit comfortably in the model's tool-result budget.
const (
	similarityThreshold = 0.5
	searchLimit         = 4
)

// Querier defines the database operations Store needs. Interfaces are
// defined by the consumer, not the provider; *pgxpool.Pool satisfies this.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Embedder produces embedding vectors for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Store manages knowledge resources with vector search capabilities.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db       Querier
	embedder Embedder
	logger   *slog.Logger
}

// NewStore creates a Store. A nil logger defaults to slog.Default().
func NewStore(db Querier, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, embedder: embedder, logger: logger}
}

// AddResource stores source material and its chunk embeddings.
// The content is split into sentences, each sentence embedded and stored
// with a foreign key back to the resource. Deleting the resource cascades
// to its embeddings.
func (s *Store) AddResource(ctx context.Context, content string) (*Resource, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generating resource id: %w", err)
	}

	var res Resource
	err = s.db.QueryRow(ctx,
		`INSERT INTO ai_resources (id, content)
		 VALUES ($1, $2)
		 RETURNING id, content, created_at, updated_at`,
		id, content).Scan(&res.ID, &res.Content, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting resource: %w", err)
	}

	chunks := SplitSentences(content)
	vectors, err := s.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding resource %s: %w", res.ID, err)
	}

	for i, chunk := range chunks {
		chunkID, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("generating embedding id: %w", err)
		}
		_, err = s.db.Exec(ctx,
			`INSERT INTO resource_embeddings (id, resource_id, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			chunkID, res.ID, chunk, pgvector.NewVector(vectors[i]))
		if err != nil {
			return nil, fmt.Errorf("inserting embedding %d of resource %s: %w", i, res.ID, err)
		}
	}

	s.logger.Info("knowledge resource added", "resource_id", res.ID, "chunks", len(chunks))
	return &res, nil
}

// Search returns the chunks most similar to the query, highest similarity
// first. Chunks at or below the similarity threshold are excluded.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding search query: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT content, 1 - (embedding <=> $1) AS similarity
		 FROM resource_embeddings
		 WHERE 1 - (embedding <=> $1) > $2
		 ORDER BY similarity DESC
		 LIMIT $3`,
		pgvector.NewVector(vec), similarityThreshold, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching embeddings: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Name, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	s.logger.Debug("knowledge search completed", "query_len", len(query), "results", len(results))
	return results, nil
}
