package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mars-labs/mars-cli/internal/chunker"
	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// syncRetriever is safe to poll from the test while the watch loop writes.
type syncRetriever struct {
	mu      sync.Mutex
	sources []string
}

func (s *syncRetriever) AddDocuments(_ context.Context, chunks []domain.Chunk, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.sources = append(s.sources, c.Source)
	}
	return len(chunks), nil
}

func (s *syncRetriever) Search(_ context.Context, _, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (s *syncRetriever) ClearSession(_ context.Context, _ string) error { return nil }

func (s *syncRetriever) SessionInfo(_ context.Context, _ string) (*domain.SessionInfo, error) {
	return nil, domain.ErrNotFound
}

func (s *syncRetriever) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sources...)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	retriever := &syncRetriever{}
	svc := NewService(chunker.New(), retriever)

	w, err := NewWatcher(svc, "s1")
	require.NoError(t, err)
	defer w.Close()

	err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWatcher_IngestsCreatedFiles(t *testing.T) {
	retriever := &syncRetriever{}
	svc := NewService(chunker.New(), retriever)

	w, err := NewWatcher(svc, "s1")
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, dir)
	}()

	// Give the watch loop a moment to register the directory.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("watched content"), 0o600))
	// Unsupported files must be skipped without stopping the loop.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0o600))

	deadline := time.After(3 * time.Second)
	for {
		// A single write can emit both Create and Write events, so the
		// file may be ingested more than once. Only the source matters.
		if sources := retriever.snapshot(); len(sources) > 0 {
			for _, src := range sources {
				assert.Equal(t, "notes.txt", src)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the watcher to ingest notes.txt")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	err = <-done
	assert.True(t, errors.Is(err, context.Canceled))
}
