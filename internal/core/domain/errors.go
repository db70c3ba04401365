package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type with no text extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrProviderUnavailable indicates the embedding or generation
	// provider is unreachable or returned an error status. The core does
	// not retry; callers may retry at a higher level.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNotConfigured indicates a missing or invalid credential or model
	// at initialisation. Fatal for that provider instance until
	// reconfigured; never crashes the process.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrEmbeddingUnavailable indicates no embedding service is wired.
	// Retrieval is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no generation service is wired.
	// Answer synthesis is disabled; retrieval still works.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the index dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
