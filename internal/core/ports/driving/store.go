package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// StoreService reports on and maintains the vector store.
type StoreService interface {
	// Count returns the number of persisted chunks.
	Count(ctx context.Context) (int, error)

	// Clear removes every persisted chunk. Returns false when the store was already empty.
	Clear(ctx context.Context) (bool, error)

	// Status returns the effective settings and the chunk count.
	Status(ctx context.Context) (*domain.Status, error)
}
