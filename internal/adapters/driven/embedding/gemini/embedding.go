// Package gemini provides an embedding service adapter using the Google
// Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultModel      = "embedding-001"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // embedding-001 default
)

// Task types distinguish document from query embeddings. The provider
// optimises the two representations differently, so the retriever must
// never conflate them.
const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// BaseURL is the API base URL (default: generativelanguage.googleapis.com).
	BaseURL string

	// Model is the embedding model to use (default: embedding-001).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// content is the Gemini text payload format.
type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// embedRequest is the Gemini embedContent request format.
type embedRequest struct {
	Model    string  `json:"model"`
	Content  content `json:"content"`
	TaskType string  `json:"taskType"`
}

// batchEmbedRequest is the Gemini batchEmbedContents request format.
type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

// embedValues is one embedding in a Gemini response.
type embedValues struct {
	Values []float32 `json:"values"`
}

// embedResponse is the embedContent response format.
type embedResponse struct {
	Embedding embedValues `json:"embedding"`
}

// batchEmbedResponse is the batchEmbedContents response format.
type batchEmbedResponse struct {
	Embeddings []embedValues `json:"embeddings"`
}

// NewEmbeddingService creates a new Gemini embedding service.
// Returns domain.ErrNotConfigured when the API key is missing.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY not found", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// EmbedDocuments generates document-mode embeddings for all texts in a
// single batchEmbedContents round trip.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := batchEmbedRequest{Requests: make([]embedRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedRequest{
			Model:    "models/" + s.model,
			Content:  content{Parts: []part{{Text: text}}},
			TaskType: taskRetrievalDocument,
		}
	}

	var out batchEmbedResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents", s.baseURL, s.model)
	if err := s.post(ctx, url, reqBody, &out); err != nil {
		return nil, err
	}

	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrProviderUnavailable, len(out.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(out.Embeddings))
	for i, e := range out.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// EmbedQuery generates a query-mode embedding.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model:    "models/" + s.model,
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: taskRetrievalQuery,
	}

	var out embedResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent", s.baseURL, s.model)
	if err := s.post(ctx, url, reqBody, &out); err != nil {
		return nil, err
	}

	if len(out.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", domain.ErrProviderUnavailable)
	}
	return out.Embedding.Values, nil
}

// post sends a JSON request and decodes the JSON response.
func (s *EmbeddingService) post(ctx context.Context, url string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("%w: gemini status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by fetching the model
// metadata. This checks both connectivity and the API key without
// running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1beta/models/%s", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ping failed: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: gemini ping status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
