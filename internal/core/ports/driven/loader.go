package driven

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// DocumentLoader reads the plain-text files of a directory.
// Enumeration is non-recursive; the output order is the enumeration order.
type DocumentLoader interface {
	// Load returns one Document per text file directly inside dir.
	// Returns domain.ErrDirectoryNotFound if dir does not exist or is not a directory.
	// An empty directory yields an empty slice and no error.
	Load(ctx context.Context, dir string) ([]domain.Document, error)
}
