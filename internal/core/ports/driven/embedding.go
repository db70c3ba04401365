// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Document and query embedding are semantically distinct calls even
// though both return same-shaped vectors: providers may optimise each
// representation differently (Gemini exposes them as separate task
// types), so implementations must not conflate them.
//
// Implementations may include:
//   - Gemini (embedding-001)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// EmbedDocuments generates embeddings for document chunks in one
	// batch where the provider allows, bounding round trips.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768).
	// This is determined by the model and must match the vector index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
