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

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion path: load, split, embed and store.
type IngestService struct {
	loader   driven.DocumentLoader
	pipeline driven.PostProcessorPipeline
	store    driven.VectorStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	loader driven.DocumentLoader,
	pipeline driven.PostProcessorPipeline,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		loader:   loader,
		pipeline: pipeline,
		store:    store,
	}
}

// Ingest loads every text file in dir, splits it and inserts the chunks.
// Nothing is written unless every chunk was produced.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*domain.IngestResult, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: documents directory is empty", domain.ErrInvalidInput)
	}
	if s.loader == nil || s.pipeline == nil || s.store == nil {
		return nil, errors.New("ingest service not configured")
	}

	logger.Section("Ingest")
	docs, err := s.loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d documents from %s", len(docs), dir)

	result := &domain.IngestResult{
		Directory: dir,
		Documents: len(docs),
	}

	var chunks []domain.Chunk
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return result, fmt.Errorf("split %s: %w", docs[i].Source, err)
		}
		logger.Debug("  %s: %d chunks", docs[i].Source, len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	result.Chunks = len(chunks)

	if result.IsEmpty() {
		return result, domain.ErrEmptyInput
	}

	inserted, err := s.store.Insert(ctx, chunks)
	if err != nil {
		return result, fmt.Errorf("insert chunks: %w", err)
	}
	result.Inserted = inserted
	logger.Info("Ingested %d chunks from %d documents", inserted, result.Documents)

	return result, nil
}
