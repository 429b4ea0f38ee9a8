package knowledge

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Embedding task types for asymmetric retrieval. Documents and queries are
// embedded with different task types so the model places them in matching
// regions of the vector space.
const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// Dimensions is the embedding width stored in the database. The
// resource_embeddings schema and its HNSW index are fixed at this size.
const Dimensions = 1024

// GeminiEmbedder produces embeddings via the Gemini embedding API.
//
// It calls the genai client directly rather than going through a framework
// embedder because retrieval quality depends on the task type, which must
// differ between ingest and query time.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the given genai client.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

// EmbedDocuments embeds a batch of chunks for storage.
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(chunks))
	for i, c := range chunks {
		contents[i] = genai.NewContentFromText(c, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             taskTypeDocument,
		OutputDimensionality: genai.Ptr(int32(Dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(resp.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(chunks))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) == 0 {
			return nil, fmt.Errorf("empty embedding for chunk %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// EmbedQuery embeds a single user question for search. Literal \n escape
// sequences that survive JSON round-trips are normalized to spaces first.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	query = strings.ReplaceAll(query, `\n`, " ")
	contents := []*genai.Content{genai.NewContentFromText(query, genai.RoleUser)}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             taskTypeQuery,
		OutputDimensionality: genai.Ptr(int32(Dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding for query")
	}
	return resp.Embeddings[0].Values, nil
}
