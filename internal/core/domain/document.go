package domain

// Chunk is a bounded, possibly overlapping window of a source document.
// Chunks are produced by the upload pipeline and handed to the retriever;
// they are immutable once created.
type Chunk struct {
	// Text is the window content.
	Text string

	// Source is the originating filename.
	Source string

	// Index is the 0-based emission order within the document.
	Index int
}

// Record represents one chunk after embedding and insertion into the
// vector index. It is the only way to map an index hit back to its chunk.
type Record struct {
	// Text is the chunk content.
	Text string

	// Source is the originating filename.
	Source string

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int

	// SessionID is the conversation the chunk belongs to.
	// A record never belongs to more than one session.
	SessionID string

	// Position is the offset into the vector index storage.
	// Positions are unique and monotonically assigned: the i-th inserted
	// vector occupies position base+i where base was the index size at
	// insertion time. Rebuilds restart assignment from 0.
	Position int

	// Embedding is the L2-normalized vector for this chunk.
	// Caching it here makes session clearing a pure reinsertion with no
	// provider round trips.
	Embedding []float32
}

// ScoredChunk is a retrieval hit with provenance.
type ScoredChunk struct {
	// Text is the matched chunk content.
	Text string `json:"text"`

	// Source is the originating filename.
	Source string `json:"source"`

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int `json:"chunk_index"`

	// Score is the inner-product similarity against the query.
	Score float64 `json:"score"`
}

// SessionInfo summarises what a session currently holds.
// It is derived from records; a session with zero chunks is
// indistinguishable from one that never existed.
type SessionInfo struct {
	// SessionID is the opaque session identifier.
	SessionID string `json:"session_id"`

	// Sources are the distinct filenames uploaded to the session,
	// in first-upload order.
	Sources []string `json:"sources"`

	// ChunkCount is the total number of indexed chunks.
	ChunkCount int `json:"chunk_count"`
}

// Answer is the result of a chat turn: the synthesised response plus the
// provenance of the retrieved context.
type Answer struct {
	// Response is the generated text.
	Response string `json:"response"`

	// Sources are the deduplicated filenames the context was drawn from.
	Sources []string `json:"sources"`

	// Model identifies the generation provider that produced the answer.
	Model string `json:"model"`
}
