package driving

import (
	"context"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// ChatService answers natural-language questions against a session's
// uploaded documents: retrieve, assemble context, synthesise.
type ChatService interface {
	// Ask retrieves the most relevant chunks for the question, feeds them
	// with the question to the generation backend and returns the answer
	// with source provenance.
	Ask(ctx context.Context, question, sessionID string) (*domain.Answer, error)
}

// IngestService turns raw files into indexed chunks.
type IngestService interface {
	// IngestFile reads a file, extracts its text, chunks it and adds the
	// chunks to the session. Returns the number of chunks indexed.
	IngestFile(ctx context.Context, path, sessionID string) (int, error)

	// IngestText chunks already-extracted text under the given source
	// name and adds it to the session.
	IngestText(ctx context.Context, text, source, sessionID string) (int, error)
}
