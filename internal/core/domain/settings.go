package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where session records live.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps records in process memory only.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite persists records (including cached embeddings) so the
	// index can be rebuilt on restart.
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string

	// Dimensions is the embedding vector size.
	Dimensions int

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string
}

// IsConfigured returns true if the generation provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds chunking and search behaviour configuration.
type RetrievalSettings struct {
	// ChunkSize is the window length in runes.
	ChunkSize int

	// ChunkOverlap is the number of runes shared by consecutive windows.
	ChunkOverlap int

	// TopK is the default number of results per search.
	TopK int

	// Overfetch multiplies TopK when querying the index, compensating for
	// candidates that belong to other sessions.
	Overfetch int
}

// StorageSettings holds record store configuration.
type StorageSettings struct {
	// Backend selects the record store implementation.
	Backend StorageBackend

	// DataDir is where the SQLite backend keeps its database.
	// Empty means ~/.mars/data.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generation provider settings.
	LLM LLMSettings

	// Retrieval holds chunking and search settings.
	Retrieval RetrievalSettings

	// Storage holds record store settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings matching the reference deployment:
// Gemini for embeddings and generation, 1000/200 chunking, top-5 results.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderGemini,
			Model:      "embedding-001",
			Dimensions: 768,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    "gemini-3-flash-preview",
		},
		Retrieval: RetrievalSettings{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
			Overfetch:    5,
		},
		Storage: StorageSettings{
			// Persistent by default: each CLI invocation is a fresh
			// process, so a memory-backed store would discard uploads
			// before the next question could use them.
			Backend: StorageSQLite,
		},
	}
}

// AllProviders returns every supported provider.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns the default embedding model per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "embedding-001",
		AIProviderOllama: "nomic-embed-text",
	}
}

// DefaultLLMModels returns the default generation model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-3-flash-preview",
		AIProviderOllama: "llama3.2:3b",
	}
}
