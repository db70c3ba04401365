// Package gemini provides a generation service adapter using the Google
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

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultLLMModel   = "gemini-3-flash-preview"
	DefaultLLMTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// BaseURL is the API base URL (default: generativelanguage.googleapis.com).
	BaseURL string

	// Model is the generation model to use (default: gemini-3-flash-preview).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides generation using Gemini.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// content is the Gemini text payload format.
type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateRequest is the generateContent request format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// generationConfig holds generation parameters.
type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateResponse is the generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// NewLLMService creates a new Gemini LLM service.
// Returns domain.ErrNotConfigured when the API key is missing.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY not found", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("%w: gemini status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", domain.ErrProviderUnavailable)
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// ModelName returns the name of the generation model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by fetching the model metadata.
func (s *LLMService) Ping(ctx context.Context) error {
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
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
