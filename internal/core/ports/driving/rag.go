package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// RAGService answers questions from the ingested documents.
type RAGService interface {
	// Answer retrieves up to k chunks and asks the generation service.
	// k <= 0 selects the configured default.
	Answer(ctx context.Context, question string, k int) (*domain.Answer, error)

	// Retrieve returns up to k chunks most similar to question without generating.
	Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error)
}
