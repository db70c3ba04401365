package driven

import (
	"context"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// RecordStore keeps the metadata records parallel to the vector index.
//
// Invariant: the store holds exactly one record per indexed vector and
// record positions mirror index positions at all times. The retriever
// serialises writes, so implementations only need to be internally
// consistent, not transactional across calls.
type RecordStore interface {
	// Append adds records in position order.
	Append(ctx context.Context, records []domain.Record) error

	// Get returns the record at the given index position.
	// Returns domain.ErrNotFound when the position is out of range.
	Get(ctx context.Context, position int) (*domain.Record, error)

	// CountBySession returns how many records a session holds.
	// Zero for unknown sessions.
	CountBySession(ctx context.Context, sessionID string) (int, error)

	// ListBySession returns a session's records in position order.
	ListBySession(ctx context.Context, sessionID string) ([]domain.Record, error)

	// DropSession removes a session's records and reassigns the
	// survivors' positions from 0, preserving their relative order. It
	// returns the number of removed records and the repositioned
	// survivors, ready for an index rebuild.
	DropSession(ctx context.Context, sessionID string) (removed int, remaining []domain.Record, err error)

	// All returns every record in position order.
	All(ctx context.Context) ([]domain.Record, error)

	// Len returns the total number of records.
	Len(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
