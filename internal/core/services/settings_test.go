package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// mapConfigStore is an in-memory driven.ConfigStore for tests.
type mapConfigStore struct {
	data map[string]any
}

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{data: make(map[string]any)}
}

func (m *mapConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mapConfigStore) GetString(key string) string {
	if v, ok := m.data[key].(string); ok {
		return v
	}
	return ""
}

func (m *mapConfigStore) GetInt(key string) int {
	if v, ok := m.data[key].(int); ok {
		return v
	}
	return 0
}

func (m *mapConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (m *mapConfigStore) Set(key string, value any) error {
	m.data[key] = value
	return nil
}

func (m *mapConfigStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapConfigStore) Load() error { return nil }

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := NewSettingsService(newMapConfigStore())

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Embedding.Dimensions, settings.Embedding.Dimensions)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, defaults.Retrieval.ChunkSize, settings.Retrieval.ChunkSize)
	assert.Equal(t, defaults.Retrieval.TopK, settings.Retrieval.TopK)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
}

func TestSettingsService_Get_StoredValuesOverrideDefaults(t *testing.T) {
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("embedding.base_url", "http://embedder:11434"))
	require.NoError(t, store.Set("retrieval.chunk_size", 500))
	require.NoError(t, store.Set("storage.backend", "memory"))

	svc := NewSettingsService(store)
	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://embedder:11434", settings.Embedding.BaseURL)
	assert.Equal(t, 500, settings.Retrieval.ChunkSize)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Backend)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.provider", "definitely-not-a-provider"))
	require.NoError(t, store.Set("storage.backend", "floppy"))

	svc := NewSettingsService(store)
	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
}

func TestSettingsService_Get_EnvAPIKeyWins(t *testing.T) {
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.api_key", "stored-key"))

	t.Setenv(envGoogleAPIKey, "env-key")

	svc := NewSettingsService(store)
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "env-key", settings.Embedding.APIKey)
	assert.Equal(t, "env-key", settings.LLM.APIKey)
}

func TestSettingsService_Get_StoredAPIKeyWithoutEnv(t *testing.T) {
	store := newMapConfigStore()
	require.NoError(t, store.Set("embedding.api_key", "stored-key"))

	t.Setenv(envGoogleAPIKey, "")

	svc := NewSettingsService(store)
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "stored-key", settings.Embedding.APIKey)
}

func TestSettingsService_Save_RoundTrips(t *testing.T) {
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	t.Setenv(envGoogleAPIKey, "")

	in := domain.DefaultAppSettings()
	in.Embedding.Provider = domain.AIProviderOllama
	in.Embedding.Model = "nomic-embed-text"
	in.Retrieval.TopK = 9
	in.Storage.Backend = domain.StorageSQLite

	require.NoError(t, svc.Save(&in))

	out, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, in.Embedding.Provider, out.Embedding.Provider)
	assert.Equal(t, in.Embedding.Model, out.Embedding.Model)
	assert.Equal(t, 9, out.Retrieval.TopK)
	assert.Equal(t, domain.StorageSQLite, out.Storage.Backend)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderGemini, "embedding-001", "k"))
	assert.Equal(t, "gemini", store.GetString("embedding.provider"))
	assert.Equal(t, "embedding-001", store.GetString("embedding.model"))
	assert.Equal(t, "k", store.GetString("embedding.api_key"))

	err := svc.SetEmbeddingProvider("bogus", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSettingsService_SetAPIKey_AppliesToBothProviders(t *testing.T) {
	store := newMapConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetAPIKey("shared"))
	assert.Equal(t, "shared", store.GetString("embedding.api_key"))
	assert.Equal(t, "shared", store.GetString("llm.api_key"))
}
