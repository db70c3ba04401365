// Package flat provides an in-memory flat vector index searched by
// exhaustive inner product. Positions are assigned in insertion order
// and only a full rebuild can remove vectors, which keeps the structure
// trivially append-only; sessions are small and rebuilds rare, so the
// O(n) search and O(n) rebuild are acceptable.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat inner-product index over normalized vectors.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimensionality.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("flat: dimension must be positive")
	}
	return &Index{dimension: dimension}, nil
}

// Add appends vectors and returns the position assigned to the first
// one. Callers must L2-normalize vectors beforehand; the index scores by
// raw inner product.
func (ix *Index) Add(_ context.Context, vectors [][]float32) (int, error) {
	for i, v := range vectors {
		if len(v) != ix.dimension {
			return 0, fmt.Errorf("flat: vector %d has %d dimensions, want %d: %w",
				i, len(v), ix.dimension, domain.ErrDimensionMismatch)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	start := len(ix.vectors)
	ix.vectors = append(ix.vectors, vectors...)
	return start, nil
}

// Search returns up to k hits sorted by descending inner-product score.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("flat: query has %d dimensions, want %d: %w",
			len(query), ix.dimension, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]driven.VectorHit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = driven.VectorHit{Position: i, Score: domain.Dot(v, query)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild atomically replaces all index contents. Position assignment
// restarts from 0.
func (ix *Index) Rebuild(_ context.Context, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dimension {
			return fmt.Errorf("flat: vector %d has %d dimensions, want %d: %w",
				i, len(v), ix.dimension, domain.ErrDimensionMismatch)
		}
	}

	fresh := make([][]float32, len(vectors))
	copy(fresh, vectors)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.vectors = fresh
	return nil
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Dimension returns the configured vector dimensionality.
func (ix *Index) Dimension() int { return ix.dimension }

// Close releases resources.
func (ix *Index) Close() error { return nil }
