package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// It follows the same contract as the SQLite store and is used as a test double.
type VectorStore struct {
	mu         sync.RWMutex
	embedder   driven.EmbeddingService
	entries    []vector.Candidate
	dimensions int
	closed     bool
}

// NewVectorStore creates a new in-memory vector store that embeds through embedder.
func NewVectorStore(embedder driven.EmbeddingService) *VectorStore {
	return &VectorStore{embedder: embedder}
}

// Insert embeds and stores the chunks. Nothing is stored if any embedding fails.
func (s *VectorStore) Insert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if s.embedder == nil {
		return 0, fmt.Errorf("%w: no embedding service", domain.ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.ErrStoreClosed
	}

	dims := s.dimensions
	for _, emb := range embeddings {
		if dims == 0 {
			dims = len(emb)
		}
		if len(emb) != dims {
			return 0, fmt.Errorf("%w: collection has %d, got %d", domain.ErrDimensionMismatch, dims, len(emb))
		}
	}
	s.dimensions = dims

	for i := range chunks {
		s.entries = append(s.entries, vector.Candidate{
			Chunk:     chunks[i],
			Embedding: embeddings[i],
		})
	}
	return len(chunks), nil
}

// Search returns up to k chunks ranked by cosine similarity to query.
// An empty store returns no results without calling the embedder.
func (s *VectorStore) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	s.mu.RLock()
	closed, empty := s.closed, len(s.entries) == 0
	s.mu.RUnlock()
	if closed {
		return nil, domain.ErrStoreClosed
	}
	if empty {
		return []domain.ScoredChunk{}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrEmbeddingUnavailable)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(queryVec) != s.dimensions {
		return nil, fmt.Errorf("%w: collection has %d, query has %d",
			domain.ErrDimensionMismatch, s.dimensions, len(queryVec))
	}
	return vector.TopK(queryVec, s.entries, k)
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.ErrStoreClosed
	}
	return len(s.entries), nil
}

// Clear removes every chunk and forgets the recorded dimension.
func (s *VectorStore) Clear(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrStoreClosed
	}
	removed := len(s.entries) > 0
	s.entries = nil
	s.dimensions = 0
	return removed, nil
}

// Close marks the store closed.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
