package mcp

import (
	"context"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	answer  *domain.Answer
	results []domain.ScoredChunk
	err     error

	question string
	k        int
}

func (m *mockRAGService) Answer(_ context.Context, question string, k int) (*domain.Answer, error) {
	m.question = question
	m.k = k
	return m.answer, m.err
}

func (m *mockRAGService) Retrieve(_ context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	m.question = question
	m.k = k
	return m.results, m.err
}

// mockStoreService is a mock implementation of driving.StoreService.
type mockStoreService struct {
	status *domain.Status
	err    error
}

func (m *mockStoreService) Count(_ context.Context) (int, error) {
	if m.status == nil {
		return 0, m.err
	}
	return m.status.Chunks, m.err
}

func (m *mockStoreService) Clear(_ context.Context) (bool, error) {
	return false, m.err
}

func (m *mockStoreService) Status(_ context.Context) (*domain.Status, error) {
	return m.status, m.err
}
