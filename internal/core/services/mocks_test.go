package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// mockLoader returns fixed documents.
type mockLoader struct {
	docs []domain.Document
	err  error
	dirs []string
}

func (m *mockLoader) Load(_ context.Context, dir string) ([]domain.Document, error) {
	m.dirs = append(m.dirs, dir)
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

// mockPipeline turns each document into one chunk per line.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var chunks []domain.Chunk
	for _, line := range strings.Split(doc.Content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         doc.ID + "-" + line,
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    line,
			Position:   len(chunks),
		})
	}
	return chunks, nil
}

// mockStore records inserted chunks and returns canned search results.
type mockStore struct {
	inserted  []domain.Chunk
	results   []domain.ScoredChunk
	count     int
	cleared   bool
	insertErr error
	searchErr error
	countErr  error
	clearErr  error

	lastQuery string
	lastK     int
}

func (m *mockStore) Insert(_ context.Context, chunks []domain.Chunk) (int, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, chunks...)
	return len(chunks), nil
}

func (m *mockStore) Search(_ context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	m.lastQuery = query
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockStore) Clear(_ context.Context) (bool, error) {
	if m.clearErr != nil {
		return false, m.clearErr
	}
	had := m.count > 0
	m.count = 0
	m.cleared = true
	return had, nil
}

func (m *mockStore) Close() error { return nil }

// mockLLM records the last prompt and returns a canned reply.
type mockLLM struct {
	reply string
	err   error

	prompt string
	opts   driven.GenerateOptions
	calls  int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompt = prompt
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockValidator counts validation calls.
type mockValidator struct {
	err        error
	embedCalls int
	llmCalls   int
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error {
	m.embedCalls++
	return m.err
}

func (m *mockValidator) ValidateLLM(_ *domain.LLMSettings) error {
	m.llmCalls++
	return m.err
}

// wordEmbedder hashes lowercase words into buckets so that texts sharing
// words land close together.
type wordEmbedder struct {
	dims  int
	calls int
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	vec := make([]float32, e.dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		vec[int(h.Sum32()%uint32(e.dims))]++
	}
	return vec, nil
}

func (e *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *wordEmbedder) Dimensions() int              { return e.dims }
func (e *wordEmbedder) ModelName() string            { return "words" }
func (e *wordEmbedder) Ping(_ context.Context) error { return nil }
func (e *wordEmbedder) Close() error                 { return nil }

func scored(source, content string, similarity float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk:      domain.Chunk{ID: source + content, Source: source, Content: content},
		Similarity: similarity,
	}
}
