package driven

import "context"

// VectorIndex is an append-only similarity structure over normalized
// vectors, searched by inner product.
//
// Callers MUST L2-normalize vectors before Add and queries before
// Search: inner product equals cosine similarity only under unit norm.
// There is no per-position deletion; removal is achieved by Rebuild
// with the surviving vectors, after which positions restart at 0.
type VectorIndex interface {
	// Add appends vectors and returns the position assigned to the first
	// one; subsequent vectors occupy consecutive positions.
	Add(ctx context.Context, vectors [][]float32) (int, error)

	// Search returns up to k hits ordered by descending inner-product
	// score. Never more than the current index size.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Rebuild atomically replaces all index contents.
	Rebuild(ctx context.Context, vectors [][]float32) error

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the offset of the matched vector in index storage.
	Position int

	// Score is the inner-product similarity against the query.
	Score float64
}
