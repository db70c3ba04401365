package services

import (
	"fmt"
	"os"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyChunkSize     = "retrieval.chunk_size"
	keyChunkOverlap  = "retrieval.chunk_overlap"
	keyTopK          = "retrieval.top_k"
	keyOverfetch     = "retrieval.overfetch"
	keyStorage       = "storage.backend"
	keyDataDir       = "storage.data_dir"
)

// envGoogleAPIKey overrides the stored Gemini key when set, matching the
// reference deployment's environment-first credential handling.
const envGoogleAPIKey = "GOOGLE_API_KEY"

// SettingsService manages application settings on top of the config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, layering the config store
// over defaults and the environment over stored API keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.getAPIKey(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, defaults.Embedding.Dimensions),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.getAPIKey(keyLLMAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Retrieval.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Retrieval.ChunkOverlap),
			TopK:         s.getInt(keyTopK, defaults.Retrieval.TopK),
			Overfetch:    s.getInt(keyOverfetch, defaults.Retrieval.Overfetch),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(keyStorage, defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyChunkSize, settings.Retrieval.ChunkSize},
		{keyChunkOverlap, settings.Retrieval.ChunkOverlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyOverfetch, settings.Retrieval.Overfetch},
		{keyStorage, string(settings.Storage.Backend)},
		{keyDataDir, settings.Storage.DataDir},
	}

	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider stores the embedding provider configuration.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrNotConfigured, provider)
	}
	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if model != "" {
		if err := s.configStore.Set(keyEmbedModel, model); err != nil {
			return fmt.Errorf("save embedding model: %w", err)
		}
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding API key: %w", err)
		}
	}
	return nil
}

// SetLLMProvider stores the generation provider configuration.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrNotConfigured, provider)
	}
	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save LLM provider: %w", err)
	}
	if model != "" {
		if err := s.configStore.Set(keyLLMModel, model); err != nil {
			return fmt.Errorf("save LLM model: %w", err)
		}
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save LLM API key: %w", err)
		}
	}
	return nil
}

// SetAPIKey stores the Gemini API key for both embedding and generation.
func (s *SettingsService) SetAPIKey(key string) error {
	if err := s.configStore.Set(keyEmbedAPIKey, key); err != nil {
		return fmt.Errorf("save embedding API key: %w", err)
	}
	if err := s.configStore.Set(keyLLMAPIKey, key); err != nil {
		return fmt.Errorf("save LLM API key: %w", err)
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return fallback
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	if v := domain.AIProvider(s.configStore.GetString(key)); v.IsValid() {
		return v
	}
	return fallback
}

func (s *SettingsService) getBackend(key string, fallback domain.StorageBackend) domain.StorageBackend {
	if v := domain.StorageBackend(s.configStore.GetString(key)); v.IsValid() {
		return v
	}
	return fallback
}

func (s *SettingsService) getAPIKey(key string) string {
	if env := os.Getenv(envGoogleAPIKey); env != "" {
		return env
	}
	return s.configStore.GetString(key)
}
