// Package throttle wraps an embedding service with token-bucket rate
// limiting so bulk uploads stay inside provider quotas.
package throttle

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService rate-limits calls to an underlying embedding service.
// A batch document call counts as one request regardless of batch size,
// matching how providers meter batched endpoints.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap decorates svc with a limiter allowing requestsPerSecond sustained
// calls (burst of 1). Non-positive rates return svc unchanged.
func Wrap(svc driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	if requestsPerSecond <= 0 {
		return svc
	}
	return &EmbeddingService{
		inner:   svc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// EmbedDocuments waits for the limiter, then delegates.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedDocuments(ctx, texts)
}

// EmbedQuery waits for the limiter, then delegates.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.EmbedQuery(ctx, text)
}

// Dimensions returns the underlying service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the underlying service's model name.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping delegates without consuming limiter tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases the underlying service's resources.
func (s *EmbeddingService) Close() error { return s.inner.Close() }
