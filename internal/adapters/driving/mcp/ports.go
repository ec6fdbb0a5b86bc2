package mcp

import (
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers questions and retrieves chunks.
	RAG driving.RAGService

	// Store reports the vector store status. Optional.
	Store driving.StoreService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.RAG == nil {
		return ErrMissingRAGService
	}
	return nil
}
