package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
)

// fakeRetriever returns canned results and records the last query.
type fakeRetriever struct {
	results []domain.ScoredChunk
	err     error

	lastQuery   string
	lastSession string
	lastTopK    int
}

func (f *fakeRetriever) AddDocuments(_ context.Context, chunks []domain.Chunk, _ string) (int, error) {
	return len(chunks), nil
}

func (f *fakeRetriever) Search(_ context.Context, query, sessionID string, topK int) ([]domain.ScoredChunk, error) {
	f.lastQuery = query
	f.lastSession = sessionID
	f.lastTopK = topK
	return f.results, f.err
}

func (f *fakeRetriever) ClearSession(_ context.Context, _ string) error { return nil }

func (f *fakeRetriever) SessionInfo(_ context.Context, _ string) (*domain.SessionInfo, error) {
	return nil, domain.ErrNotFound
}

// fakeLLM echoes a fixed response and captures the prompt.
type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

func TestChat_Ask_BuildsPromptFromRetrievedChunks(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.ScoredChunk{
		{Text: "the sky is blue", Source: "sky.txt", ChunkIndex: 0, Score: 0.9},
		{Text: "water is wet", Source: "water.txt", ChunkIndex: 1, Score: 0.7},
		{Text: "skies darken at night", Source: "sky.txt", ChunkIndex: 2, Score: 0.5},
	}}
	llm := &fakeLLM{response: "The sky is **blue**."}
	svc := NewChatService(retriever, llm, 3)

	answer, err := svc.Ask(context.Background(), "what colour is the sky?", "s1")
	require.NoError(t, err)

	assert.Equal(t, "The sky is **blue**.", answer.Response)
	assert.Equal(t, "fake-llm", answer.Model)
	assert.Equal(t, []string{"sky.txt", "water.txt"}, answer.Sources,
		"sources deduplicated in rank order")

	assert.Equal(t, "what colour is the sky?", retriever.lastQuery)
	assert.Equal(t, "s1", retriever.lastSession)
	assert.Equal(t, 3, retriever.lastTopK)

	assert.Contains(t, llm.lastPrompt, "[sky.txt]\nthe sky is blue")
	assert.Contains(t, llm.lastPrompt, "[water.txt]\nwater is wet")
	assert.Contains(t, llm.lastPrompt, "Question: what colour is the sky?")
	assert.True(t, strings.Contains(llm.lastPrompt, contextSeparator),
		"chunks are joined with the separator")
}

func TestChat_Ask_EmptySessionUsesFallback(t *testing.T) {
	retriever := &fakeRetriever{results: nil}
	llm := &fakeLLM{response: "I have no documents."}
	svc := NewChatService(retriever, llm, 5)

	answer, err := svc.Ask(context.Background(), "anything?", "empty")
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	assert.Contains(t, llm.lastPrompt, noContextFallback)
}

func TestChat_Ask_RetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: domain.ErrProviderUnavailable}
	llm := &fakeLLM{response: "unused"}
	svc := NewChatService(retriever, llm, 5)

	_, err := svc.Ask(context.Background(), "q", "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Empty(t, llm.lastPrompt, "generation must not run when retrieval fails")
}

func TestChat_Ask_LLMError(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.ScoredChunk{
		{Text: "x", Source: "a.txt", Score: 1},
	}}
	llm := &fakeLLM{err: errors.New("boom")}
	svc := NewChatService(retriever, llm, 5)

	_, err := svc.Ask(context.Background(), "q", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

func TestChat_Ask_NilLLM(t *testing.T) {
	svc := NewChatService(&fakeRetriever{}, nil, 5)

	_, err := svc.Ask(context.Background(), "q", "s1")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestNewChatService_TopKDefault(t *testing.T) {
	svc := NewChatService(&fakeRetriever{}, &fakeLLM{}, 0)
	assert.Equal(t, 5, svc.topK)

	svc = NewChatService(&fakeRetriever{}, &fakeLLM{}, 8)
	assert.Equal(t, 8, svc.topK)
}

func TestBuildContext(t *testing.T) {
	block, sources := buildContext(nil)
	assert.Equal(t, noContextFallback, block)
	assert.Nil(t, sources)

	block, sources = buildContext([]domain.ScoredChunk{
		{Text: "one", Source: "a.txt"},
		{Text: "two", Source: "b.txt"},
		{Text: "three", Source: "a.txt"},
	})
	assert.Equal(t, []string{"a.txt", "b.txt"}, sources)
	assert.Equal(t, "[a.txt]\none"+contextSeparator+"[b.txt]\ntwo"+contextSeparator+"[a.txt]\nthree", block)
}
