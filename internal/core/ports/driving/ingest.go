package driving

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// IngestService loads, splits, embeds and stores documents.
type IngestService interface {
	// Ingest processes every text file directly inside dir.
	// Returns domain.ErrDirectoryNotFound when dir is missing and
	// domain.ErrEmptyInput (with a populated result) when nothing could be ingested.
	Ingest(ctx context.Context, dir string) (*domain.IngestResult, error)
}
