package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
	"github.com/mars-labs/mars-cli/internal/core/ports/driving"
	"github.com/mars-labs/mars-cli/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// DefaultOverfetch multiplies topK when querying the index. The index has
// no native per-session filter, so candidates from other sessions must be
// fetched and discarded.
const DefaultOverfetch = 5

// RetrieverService owns the vector index and the record store and keeps
// them position-aligned. A single RWMutex serialises add and clear
// against each other and against in-flight searches; embedding round
// trips (the dominant latency source) happen before the lock is taken.
type RetrieverService struct {
	mu        sync.RWMutex
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	records   driven.RecordStore
	overfetch int
}

// RetrieverOption configures the retriever service.
type RetrieverOption func(*RetrieverService)

// WithOverfetch sets the over-fetch multiplier for session filtering.
func WithOverfetch(n int) RetrieverOption {
	return func(s *RetrieverService) {
		if n > 0 {
			s.overfetch = n
		}
	}
}

// NewRetrieverService creates a retriever over the given index and
// record store. The two must start position-aligned (both empty, or the
// store pre-loaded and the index rebuilt from it via WarmStart).
func NewRetrieverService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	records driven.RecordStore,
	opts ...RetrieverOption,
) *RetrieverService {
	s := &RetrieverService{
		embedder:  embedder,
		index:     index,
		records:   records,
		overfetch: DefaultOverfetch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WarmStart rebuilds the index from the record store's cached vectors.
// Used with a persistent store so uploads survive restarts.
func (s *RetrieverService) WarmStart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.rebuildFromStore(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Warm start: restored %d vectors", n)
	}
	return nil
}

// rebuildFromStore replaces the index contents with the store's cached
// vectors, restoring position alignment. Callers must hold the write
// lock.
func (s *RetrieverService) rebuildFromStore(ctx context.Context) (int, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load records: %w", err)
	}

	vectors := make([][]float32, len(records))
	for i := range records {
		vectors[i] = records[i].Embedding
	}
	if err := s.index.Rebuild(ctx, vectors); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return len(records), nil
}

// AddDocuments embeds the chunk texts in one batch call, normalizes the
// vectors and inserts them under the given session. Returns the number
// of chunks indexed. Empty input returns 0 without side effects; an
// embedding failure mutates nothing.
func (s *RetrieverService) AddDocuments(ctx context.Context, chunks []domain.Chunk, sessionID string) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Add Documents")
	logger.Debug("Session: %s, chunks: %d", sessionID, len(chunks))

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	// Embed before taking the lock; the provider round trip dominates.
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrProviderUnavailable, len(vectors), len(chunks))
	}
	for i := range vectors {
		domain.Normalize(vectors[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := s.index.Add(ctx, vectors)
	if err != nil {
		return 0, fmt.Errorf("index vectors: %w", err)
	}

	records := make([]domain.Record, len(chunks))
	for i := range chunks {
		records[i] = domain.Record{
			Text:       chunks[i].Text,
			Source:     chunks[i].Source,
			ChunkIndex: chunks[i].Index,
			SessionID:  sessionID,
			Position:   start + i,
			Embedding:  vectors[i],
		}
	}
	if err := s.records.Append(ctx, records); err != nil {
		// The vectors already landed in the index. Rebuild it from the
		// store so searches never hit positions without records.
		if _, rbErr := s.rebuildFromStore(ctx); rbErr != nil {
			return 0, fmt.Errorf("append records: %w (restoring index failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("append records: %w", err)
	}

	logger.Info("Indexed %d chunks at positions %d..%d", len(chunks), start, start+len(chunks)-1)
	return len(chunks), nil
}

// Search embeds the query in query mode and returns up to topK chunks
// from the session, ordered by descending inner-product score. A session
// with no documents returns empty without a provider round trip; fewer
// than topK matches is a normal outcome.
func (s *RetrieverService) Search(ctx context.Context, query, sessionID string, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Search")
	logger.Debug("Query: %q, session: %s, topK: %d", query, sessionID, topK)

	count, err := s.records.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count session records: %w", err)
	}
	if count == 0 {
		logger.Debug("Session has no documents, skipping provider call")
		return nil, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.Normalize(queryVec)

	s.mu.RLock()
	defer s.mu.RUnlock()

	fetch := topK * s.overfetch
	if size := s.index.Len(); fetch > size {
		fetch = size
	}

	hits, err := s.index.Search(ctx, queryVec, fetch)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Index returned %d candidates", len(hits))

	results := make([]domain.ScoredChunk, 0, topK)
	for _, hit := range hits {
		rec, err := s.records.Get(ctx, hit.Position)
		if err != nil {
			return nil, fmt.Errorf("resolve position %d: %w", hit.Position, err)
		}
		if rec.SessionID != sessionID {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Text:       rec.Text,
			Source:     rec.Source,
			ChunkIndex: rec.ChunkIndex,
			Score:      hit.Score,
		})
		if len(results) >= topK {
			break
		}
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// ClearSession removes all of a session's records and rebuilds the index
// from the survivors' cached vectors. Clearing an unknown session is a
// no-op success. This is the only deletion path; it costs O(remaining)
// index insertions but zero provider calls.
func (s *RetrieverService) ClearSession(ctx context.Context, sessionID string) error {
	logger.Section("Clear Session")
	logger.Debug("Session: %s", sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, remaining, err := s.records.DropSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("drop session records: %w", err)
	}
	if removed == 0 {
		logger.Debug("Session had no records, nothing to rebuild")
		return nil
	}

	vectors := make([][]float32, len(remaining))
	for i := range remaining {
		vectors[i] = remaining[i].Embedding
	}
	if err := s.index.Rebuild(ctx, vectors); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	logger.Info("Removed %d records, rebuilt index with %d vectors", removed, len(remaining))
	return nil
}

// SessionInfo reports a session's distinct sources (in first-upload
// order) and chunk count, derived from the records.
func (s *RetrieverService) SessionInfo(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	records, err := s.records.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}

	seen := make(map[string]bool)
	var sources []string
	for i := range records {
		if !seen[records[i].Source] {
			seen[records[i].Source] = true
			sources = append(sources, records[i].Source)
		}
	}

	return &domain.SessionInfo{
		SessionID:  sessionID,
		Sources:    sources,
		ChunkCount: len(records),
	}, nil
}
