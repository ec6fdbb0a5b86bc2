package driven

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// VectorStore persists chunks with their embeddings and answers similarity queries.
// The store embeds text itself through the EmbeddingService it was opened with.
type VectorStore interface {
	// Insert embeds and persists the chunks. Returns the number inserted.
	// Empty input is a no-op returning 0. Either every chunk is persisted
	// or none is.
	Insert(ctx context.Context, chunks []domain.Chunk) (int, error)

	// Search returns up to k chunks ranked by descending similarity to query.
	// Ties keep insertion order. An empty or missing store yields no results.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of persisted chunks, 0 if nothing is persisted yet.
	Count(ctx context.Context) (int, error)

	// Clear removes the whole persisted collection.
	// Returns true only if at least one chunk was removed.
	Clear(ctx context.Context) (bool, error)

	// Close releases resources.
	Close() error
}
