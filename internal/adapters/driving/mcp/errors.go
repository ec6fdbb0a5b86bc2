// Package mcp provides an MCP (Model Context Protocol) server adapter for ragent.
// It lets AI assistants ask questions against the ingested documents.
package mcp

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("mcp: rag service is required")
