// Package chunker provides fixed-size overlapping text chunking.
package chunker

import (
	"strings"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// Chunker splits extracted text into fixed-size overlapping windows.
// Window boundaries are measured in runes so multi-byte text never gets
// split mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the window length in runes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// An overlap at or above the window size would stall the window;
	// clamp it so the loop always advances.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits text into windows tagged with the source filename and
// their 0-based emission order. Empty or whitespace-only text yields no
// chunks; that is a defined outcome, not an error.
//
// Windows start at 0 and advance by chunkSize-overlap while the start is
// inside the text. The final window is truncated at the text end, never
// padded, so consecutive windows overlap by exactly the configured
// amount except possibly the last.
func (c *Chunker) Chunk(text, source string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)
	for start, index := 0, 0; start < total; start, index = start+step, index+1 {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			Text:   string(runes[start:end]),
			Source: source,
			Index:  index,
		})

		if end == total {
			break
		}
	}

	return chunks
}

// ChunkSize returns the configured window length.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int { return c.overlap }
