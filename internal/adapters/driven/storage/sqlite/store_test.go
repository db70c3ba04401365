package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func rec(position int, session, source string, chunkIndex int, embedding []float32) domain.Record {
	return domain.Record{
		Text:       "chunk text",
		Source:     source,
		ChunkIndex: chunkIndex,
		SessionID:  session,
		Position:   position,
		Embedding:  embedding,
	}
}

func TestNewRecordStore_CreatesDatabase(t *testing.T) {
	store := newTestStore(t)
	assert.FileExists(t, store.Path())

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewRecordStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewRecordStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(),
		[]domain.Record{rec(0, "s1", "a.txt", 0, []float32{1, 0})}))
	require.NoError(t, store.Close())

	// Reopening must not re-run migrations or lose data.
	store, err = NewRecordStore(dir)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordStore_AppendAndGet_RoundTripsEmbedding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	embedding := []float32{0.1, -0.25, 3.5, 0}
	require.NoError(t, store.Append(ctx, []domain.Record{
		rec(0, "s1", "a.txt", 0, embedding),
	}))

	got, err := store.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "a.txt", got.Source)
	assert.Equal(t, 0, got.ChunkIndex)
	assert.Equal(t, "chunk text", got.Text)
	assert.Equal(t, embedding, got.Embedding)
}

func TestRecordStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_SessionQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []domain.Record{
		rec(0, "s1", "a.txt", 0, []float32{1, 0}),
		rec(1, "s2", "b.txt", 0, []float32{0, 1}),
		rec(2, "s1", "a.txt", 1, []float32{1, 0}),
	}))

	count, err := store.CountBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := store.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, 2, list[1].Position)
}

func TestRecordStore_DropSession_RepositionsSurvivors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []domain.Record{
		rec(0, "s1", "a.txt", 0, []float32{1, 0}),
		rec(1, "s2", "b.txt", 0, []float32{0, 1}),
		rec(2, "s1", "a.txt", 1, []float32{1, 0}),
		rec(3, "s2", "b.txt", 1, []float32{0.5, 0.5}),
	}))

	removed, survivors, err := store.DropSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	require.Len(t, survivors, 2)

	assert.Equal(t, 0, survivors[0].Position)
	assert.Equal(t, 1, survivors[1].Position)
	assert.Equal(t, "s2", survivors[0].SessionID)
	assert.Equal(t, []float32{0, 1}, survivors[0].Embedding)

	// The persisted rows match the returned survivors.
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ChunkIndex)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecordStore_DropSession_Missing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []domain.Record{
		rec(0, "s1", "a.txt", 0, []float32{1, 0}),
	}))

	removed, survivors, err := store.DropSession(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Len(t, survivors, 1)
	assert.Equal(t, 0, survivors[0].Position)
}

func TestRecordStore_All_OrderedByPosition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []domain.Record{
		rec(0, "s1", "a.txt", 0, []float32{1, 0}),
		rec(1, "s1", "a.txt", 1, []float32{0, 1}),
		rec(2, "s2", "b.txt", 0, nil),
	}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := range all {
		assert.Equal(t, i, all[i].Position)
	}
	assert.Nil(t, all[2].Embedding, "empty blob round trips as nil")
}

func TestFloat32Bytes_RoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.333, 1e-7, 3.4e38}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, bytesToFloat32Slice(nil))
	assert.Empty(t, float32SliceToBytes(nil))
}
