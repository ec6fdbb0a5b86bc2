package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status as json", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Embedding.APIKey = "secret-key"
		store := &mockStoreService{status: &domain.Status{Settings: settings, Chunks: 7}}
		server, err := NewServer(&Ports{RAG: &mockRAGService{}, Store: store}, "test")
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest(StatusURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, StatusURI, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.NotContains(t, result.Contents[0].Text, "secret-key")

		var info statusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.Equal(t, 7, info.Chunks)
		assert.Equal(t, domain.DefaultCollection, info.Collection)
		assert.Equal(t, domain.DefaultEmbeddingModel, info.EmbeddingModel)
		assert.Equal(t, domain.DefaultLLMModel, info.LLMModel)
	})

	t.Run("nil store service is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{RAG: &mockRAGService{}}, "test")
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest(StatusURI))

		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		store := &mockStoreService{err: errors.New("disk gone")}
		server, err := NewServer(&Ports{RAG: &mockRAGService{}, Store: store}, "test")
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest(StatusURI))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading status")
	})
}
