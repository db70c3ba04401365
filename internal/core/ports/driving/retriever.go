// Package driving defines the inbound ports of the application core
// (primary ports), implemented by services and consumed by the CLI and
// TUI adapters.
package driving

import (
	"context"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// Retriever is the session-scoped retrieval core: it owns the vector
// index and the record store, and serialises add/search/clear against
// each other.
type Retriever interface {
	// AddDocuments embeds the chunks in one batch, normalizes the
	// vectors and inserts them under the given session. Returns the
	// number of chunks indexed; empty input returns 0 with no side
	// effects. On embedding failure nothing is mutated.
	AddDocuments(ctx context.Context, chunks []domain.Chunk, sessionID string) (int, error)

	// Search embeds the query (query mode) and returns up to topK chunks
	// from the session, ordered by descending score. A session with no
	// documents returns empty without invoking the provider. Fewer than
	// topK matches is a normal outcome, never an error.
	Search(ctx context.Context, query, sessionID string, topK int) ([]domain.ScoredChunk, error)

	// ClearSession removes all of a session's records and rebuilds the
	// index from the survivors' cached vectors. Clearing an absent
	// session is a no-op success. This is the only deletion path and
	// costs O(remaining records); treat it as expensive.
	ClearSession(ctx context.Context, sessionID string) error

	// SessionInfo reports a session's sources and chunk count.
	// Returns domain.ErrNotFound for sessions with no records.
	SessionInfo(ctx context.Context, sessionID string) (*domain.SessionInfo, error)
}
