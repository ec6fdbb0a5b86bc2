package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions against the ingested documents.

Tools:
  ask       - answer a question from the documents
  retrieve  - return the most similar chunks without generating

Resources:
  ragent://status - configured paths, models and chunk count

By default the server communicates over stdio. Use --port to serve HTTP
instead, for example to test with MCP Inspector.

Examples:
  ragent mcp serve
  ragent mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ragent": {
        "command": "/path/to/ragent",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		RAG:   ragService,
		Store: storeService,
	}, version)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout is free in HTTP mode; stdio mode owns it for JSON-RPC.
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
