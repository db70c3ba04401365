package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
	"github.com/mars-labs/mars-cli/internal/core/ports/driving"
	"github.com/mars-labs/mars-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// systemPrompt frames the assistant and carries the retrieved context.
const systemPrompt = `You are an AI assistant for document analysis.

RULES:
- Use **bold** for key terms
- Use bullet points for lists
- Be direct - no "Based on the document" phrases
- Sources are shown separately

Context:
%s`

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n---\n\n"

// noContextFallback is used when the session has no relevant documents.
const noContextFallback = "No relevant documents found in uploaded files."

// ChatService answers questions by retrieving session context and
// handing it, with the question, to the generation backend.
type ChatService struct {
	retriever driving.Retriever
	llm       driven.LLMService
	topK      int
}

// NewChatService creates a chat service. topK bounds how many chunks are
// packed into the prompt context.
func NewChatService(retriever driving.Retriever, llm driven.LLMService, topK int) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		retriever: retriever,
		llm:       llm,
		topK:      topK,
	}
}

// Ask retrieves the most relevant chunks for the question, assembles the
// prompt and returns the synthesised answer with deduplicated source
// provenance. Retrieval and provider failures propagate; an empty
// session is answered from the fallback context, not an error.
func (s *ChatService) Ask(ctx context.Context, question, sessionID string) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	results, err := s.retriever.Search(ctx, question, sessionID, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	contextBlock, sources := buildContext(results)
	logger.Debug("Prompt context: %d chunks, %d sources", len(results), len(sources))

	prompt := fmt.Sprintf(systemPrompt, contextBlock) + "\n\nQuestion: " + question
	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Response: answer,
		Sources:  sources,
		Model:    s.llm.ModelName(),
	}, nil
}

// buildContext formats retrieved chunks as "[source]\ntext" blocks and
// collects the distinct sources in rank order.
func buildContext(results []domain.ScoredChunk) (string, []string) {
	if len(results) == 0 {
		return noContextFallback, nil
	}

	parts := make([]string, len(results))
	seen := make(map[string]bool)
	var sources []string
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%s]\n%s", r.Source, r.Text)
		if !seen[r.Source] {
			seen[r.Source] = true
			sources = append(sources, r.Source)
		}
	}

	return strings.Join(parts, contextSeparator), sources
}
