package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestEmbedQuery(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var body embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.Equal(t, "hello", body.Prompt)

		json.NewEncoder(w).Encode(embedResponse{ //nolint:errcheck // test handler
			Embedding: []float64{0.25, -0.5},
		})
	})

	vector, err := svc.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5}, vector)
}

func TestEmbedDocuments_Sequential(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(embedResponse{ //nolint:errcheck // test handler
			Embedding: []float64{float64(calls), 0},
		})
	})

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 3, calls, "one request per text")
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(3), vectors[2][0])
}

func TestEmbedDocuments_Empty(t *testing.T) {
	svc := newTestService(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	vectors, err := svc.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbed_HTTPError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`)) //nolint:errcheck // test handler
	})

	_, err := svc.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestEmbed_Unreachable(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := svc.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`)) //nolint:errcheck // test handler
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
