package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// StoreService reports on and maintains the vector store.
type StoreService struct {
	store      driven.VectorStore
	settings   domain.Settings
	configPath string
}

// NewStoreService creates a new store service.
// settings and configPath are reported verbatim by Status.
func NewStoreService(store driven.VectorStore, settings domain.Settings, configPath string) *StoreService {
	return &StoreService{
		store:      store,
		settings:   settings,
		configPath: configPath,
	}
}

// Count returns the number of persisted chunks.
func (s *StoreService) Count(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, errors.New("vector store not configured")
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Clear removes the persisted collection.
func (s *StoreService) Clear(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, errors.New("vector store not configured")
	}
	cleared, err := s.store.Clear(ctx)
	if err != nil {
		return false, fmt.Errorf("clear store: %w", err)
	}
	logger.Debug("Clear removed data: %t", cleared)
	return cleared, nil
}

// Status returns the effective settings and the current chunk count.
func (s *StoreService) Status(ctx context.Context) (*domain.Status, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Status{
		Settings:   s.settings,
		Chunks:     count,
		ConfigPath: s.configPath,
	}, nil
}
