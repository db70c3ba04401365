// Package memory provides in-memory storage adapters.
package memory

import (
	"context"
	"sync"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// Records are held in a slice whose offsets mirror index positions.
type RecordStore struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Append adds records in position order.
func (s *RecordStore) Append(_ context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// Get returns the record at the given index position.
func (s *RecordStore) Get(_ context.Context, position int) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.records) {
		return nil, domain.ErrNotFound
	}
	rec := s.records[position]
	return &rec, nil
}

// CountBySession returns how many records a session holds.
func (s *RecordStore) CountBySession(_ context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.records {
		if s.records[i].SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// ListBySession returns a session's records in position order.
func (s *RecordStore) ListBySession(_ context.Context, sessionID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Record
	for i := range s.records {
		if s.records[i].SessionID == sessionID {
			result = append(result, s.records[i])
		}
	}
	return result, nil
}

// DropSession removes a session's records and reassigns the survivors'
// positions from 0, preserving their relative order.
func (s *RecordStore) DropSession(_ context.Context, sessionID string) (int, []domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	survivors := make([]domain.Record, 0, len(s.records))
	removed := 0
	for i := range s.records {
		if s.records[i].SessionID == sessionID {
			removed++
			continue
		}
		rec := s.records[i]
		rec.Position = len(survivors)
		survivors = append(survivors, rec)
	}

	s.records = survivors

	out := make([]domain.Record, len(survivors))
	copy(out, survivors)
	return removed, out, nil
}

// All returns every record in position order.
func (s *RecordStore) All(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Len returns the total number of records.
func (s *RecordStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close releases resources.
func (s *RecordStore) Close() error { return nil }
