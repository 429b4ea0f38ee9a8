package knowledge

import "time"

// Resource is a unit of source material added to the knowledge base.
// Its content is chunked and embedded at ingest time.
type Resource struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult is one chunk returned by a similarity search.
type SearchResult struct {
	// Name is the chunk text. The field name follows the shape the
	// assistant's getInformation tool returns to the model.
	Name string `json:"name"`

	// Similarity is the cosine similarity between the chunk and the
	// query, in (0, 1].
	Similarity float64 `json:"similarity"`
}
