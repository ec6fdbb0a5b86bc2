package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure RAGService implements the interfaces.
var (
	_ driving.RAGService      = (*RAGService)(nil)
	_ driven.PromptStoreAware = (*RAGService)(nil)
)

// NoContextSentinel is the context block used when retrieval finds nothing.
const NoContextSentinel = "No relevant context found."

// defaultSystemPrompt is the fallback when no PromptStore is configured.
const defaultSystemPrompt = `You are an expert assistant that answers questions based on the provided context.
Use ONLY the information from the context to answer.
If the answer is not in the context, say so.
Be concise and accurate in your responses.`

// defaultUserPrompt is the fallback when no PromptStore is configured.
const defaultUserPrompt = `Context:
%s

Question: %s

Answer based on the context above:`

// RAGService answers questions from retrieved chunks.
type RAGService struct {
	store       driven.VectorStore
	llm         driven.LLMService
	promptStore driven.PromptStore
	topK        int
	temperature float64
}

// NewRAGService creates a new RAG orchestrator.
// The settings supply the default top-k and the generation temperature.
func NewRAGService(store driven.VectorStore, llm driven.LLMService, settings domain.Settings) *RAGService {
	topK := settings.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RAGService{
		store:       store,
		llm:         llm,
		topK:        topK,
		temperature: settings.LLM.Temperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *RAGService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Retrieve returns up to k chunks ranked by similarity to question.
func (s *RAGService) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return nil, errors.New("vector store not configured")
	}
	if k <= 0 {
		k = s.topK
	}

	results, err := s.store.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Retrieved %d chunks (k=%d)", len(results), k)
	return results, nil
}

// Answer retrieves context for question and asks the generation service.
// The generated text is returned verbatim together with the ranked sources.
func (s *RAGService) Answer(ctx context.Context, question string, k int) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: llm service not configured", domain.ErrGenerationUnavailable)
	}

	results, err := s.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	contextBlock := BuildContext(domain.Chunks(results))
	userTemplate := s.loadPrompt(driven.PromptRAGUser, defaultUserPrompt)
	if strings.Count(userTemplate, "%s") != 2 {
		logger.Warn("prompt %q must contain two %%s placeholders, using default", driven.PromptRAGUser)
		userTemplate = defaultUserPrompt
	}
	prompt := fmt.Sprintf(userTemplate, contextBlock, strings.TrimSpace(question))
	system := s.loadPrompt(driven.PromptRAGSystem, defaultSystemPrompt)

	logger.Section("Generation")
	logger.Debug("Model: %s", s.llm.ModelName())
	logger.Debug("Prompt length: %d characters", len(prompt))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      system,
		Temperature: s.temperature,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, err)
	}

	return &domain.Answer{
		Text:    text,
		Sources: results,
		Context: contextBlock,
		Model:   s.llm.ModelName(),
	}, nil
}

// BuildContext formats chunks into the context block sent to the model.
// Each chunk is labelled with its 1-based rank and source, separated by a blank line.
func BuildContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, len(chunks))
	for i := range chunks {
		parts[i] = fmt.Sprintf("[%d] (Source: %s)\n%s", i+1, sourceLabel(chunks[i]), chunks[i].Content)
	}
	return strings.Join(parts, "\n\n")
}

func sourceLabel(c domain.Chunk) string {
	if c.Source == "" {
		return "unknown"
	}
	return c.Source
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *RAGService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
