// Package ingest turns raw files into indexed chunks: read, extract,
// chunk, add to the retriever. Only text-typed formats are handled here;
// binary formats needing third-party parsers are rejected.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mars-labs/mars-cli/internal/chunker"
	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driving"
	"github.com/mars-labs/mars-cli/internal/logger"
)

// Ensure Service implements the interface.
var _ driving.IngestService = (*Service)(nil)

// supportedExtensions are the text-typed formats the loader accepts.
// Documents, code, markup and config files all extract as plain text.
var supportedExtensions = map[string]bool{
	// Documents
	"txt": true, "md": true, "tex": true, "csv": true,
	// Code
	"py": true, "java": true, "c": true, "h": true, "cpp": true,
	"js": true, "ts": true, "swift": true, "r": true, "rs": true,
	"sql": true, "go": true, "kt": true, "scala": true, "php": true,
	"rb": true, "sh": true, "bash": true,
	// Markup
	"html": true, "css": true, "json": true, "xml": true, "yaml": true, "yml": true,
}

// Supported reports whether the file's extension has a text extractor.
func Supported(filename string) bool {
	return supportedExtensions[extension(filename)]
}

// SupportedExtensions returns the accepted extensions, unordered.
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	return out
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// FileResult reports the outcome of ingesting one file in a batch.
type FileResult struct {
	// Filename is the base name of the processed file.
	Filename string

	// Chunks is the number of chunks indexed.
	Chunks int

	// Err holds the per-file failure; other files in the batch proceed.
	Err error
}

// Service reads files, chunks their text and feeds the retriever.
type Service struct {
	chunker   *chunker.Chunker
	retriever driving.Retriever
}

// NewService creates an ingest service.
func NewService(c *chunker.Chunker, retriever driving.Retriever) *Service {
	return &Service{chunker: c, retriever: retriever}
}

// IngestFile reads a file, extracts its text and adds the chunks to the
// session. Unsupported extensions return domain.ErrUnsupportedType.
func (s *Service) IngestFile(ctx context.Context, path, sessionID string) (int, error) {
	name := filepath.Base(path)
	if !Supported(name) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, extension(name))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	text := extractText(data)
	return s.IngestText(ctx, text, name, sessionID)
}

// IngestText chunks already-extracted text under the given source name
// and adds it to the session. Empty text indexes nothing and returns 0.
func (s *Service) IngestText(ctx context.Context, text, source, sessionID string) (int, error) {
	chunks := s.chunker.Chunk(text, source)
	if len(chunks) == 0 {
		logger.Debug("No chunks produced for %s", source)
		return 0, nil
	}
	return s.retriever.AddDocuments(ctx, chunks, sessionID)
}

// IngestFiles processes a batch, collecting per-file outcomes without
// aborting on individual failures.
func (s *Service) IngestFiles(ctx context.Context, paths []string, sessionID string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		n, err := s.IngestFile(ctx, path, sessionID)
		results = append(results, FileResult{
			Filename: filepath.Base(path),
			Chunks:   n,
			Err:      err,
		})
	}
	return results
}

// extractText decodes file bytes as UTF-8, falling back to a lossy
// Latin-1 interpretation for files that don't validate.
func extractText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
