// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/mars-labs/mars-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/mars-labs/mars-cli/internal/adapters/driven/embedding/ollama"
	"github.com/mars-labs/mars-cli/internal/adapters/driven/embedding/throttle"
	geminillm "github.com/mars-labs/mars-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/mars-labs/mars-cli/internal/adapters/driven/llm/ollama"
	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. A failed ping surfaces as
// domain.ErrProviderUnavailable before any document is accepted.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, err
	}

	return svc, nil
}

// CreateAndValidateLLMService creates a generation service and validates
// connectivity.
func CreateAndValidateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, err
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based
// on settings, wrapped with rate limiting when configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrNotConfigured, settings.Provider)
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderGemini:
		created, err := geminiembed.NewEmbeddingService(geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		svc = created

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	return throttle.Wrap(svc, settings.RequestsPerSecond), nil
}

// CreateLLMService creates the appropriate generation service based on settings.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrNotConfigured, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
