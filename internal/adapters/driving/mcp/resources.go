package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ragent resources.
	uriScheme = "ragent://"

	// StatusURI identifies the vector store status resource.
	StatusURI = uriScheme + "status"
)

// statusInfo is the JSON body of the status resource.
// API keys are never exposed.
type statusInfo struct {
	DocsDir        string `json:"docs_dir"`
	DataDir        string `json:"data_dir"`
	Collection     string `json:"collection"`
	Chunks         int    `json:"chunks"`
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
	TopK           int    `json:"top_k"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         StatusURI,
		Name:        "status",
		Description: "Configured paths, models and the number of stored chunks",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// handleStatusResource returns the current store status.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Store == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	status, err := s.ports.Store.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	data, err := json.MarshalIndent(statusInfo{
		DocsDir:        status.Settings.DocsDir,
		DataDir:        status.Settings.DataDir,
		Collection:     status.Settings.Collection,
		Chunks:         status.Chunks,
		EmbeddingModel: status.Settings.Embedding.Model,
		LLMModel:       status.Settings.LLM.Model,
		TopK:           status.Settings.TopK,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
