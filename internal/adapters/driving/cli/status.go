package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statusJSON  bool
	statusCheck bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current status of the RAG agent",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "ping the embedding and generation services")
	rootCmd.AddCommand(statusCmd)
}

// statusOutput is the JSON form of the status report. API keys are omitted.
type statusOutput struct {
	DocsDir           string `json:"docs_dir"`
	DataDir           string `json:"data_dir"`
	Collection        string `json:"collection"`
	Chunks            int    `json:"chunks"`
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
	EmbeddingURL      string `json:"embedding_base_url"`
	LLMProvider       string `json:"llm_provider"`
	LLMModel          string `json:"llm_model"`
	LLMURL            string `json:"llm_base_url"`
	ConfigFile        string `json:"config_file"`
	EmbeddingCheck    string `json:"embedding_check,omitempty"`
	LLMCheck          string `json:"llm_check,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	status, err := storeService.Status(cmd.Context())
	if err != nil {
		return err
	}
	s := status.Settings

	out := statusOutput{
		DocsDir:           s.DocsDir,
		DataDir:           s.DataDir,
		Collection:        s.Collection,
		Chunks:            status.Chunks,
		EmbeddingProvider: s.Embedding.Provider.String(),
		EmbeddingModel:    s.Embedding.Model,
		EmbeddingURL:      s.Embedding.BaseURL,
		LLMProvider:       s.LLM.Provider.String(),
		LLMModel:          s.LLM.Model,
		LLMURL:            s.LLM.BaseURL,
		ConfigFile:        status.ConfigPath,
	}

	check := statusCheck && settingsService != nil
	if check {
		out.EmbeddingCheck = checkResult(settingsService.ValidateEmbeddingConfig(&s))
		out.LLMCheck = checkResult(settingsService.ValidateLLMConfig(&s))
	}

	if statusJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("RAG Agent Status")
	cmd.Println()
	cmd.Printf("  Documents directory: %s\n", out.DocsDir)
	cmd.Printf("  Data directory: %s\n", out.DataDir)
	cmd.Printf("  Collection: %s\n", out.Collection)
	cmd.Printf("  Chunks in vector store: %d\n", out.Chunks)
	cmd.Printf("  Embedding model: %s (%s, %s)\n", out.EmbeddingModel, out.EmbeddingProvider, out.EmbeddingURL)
	cmd.Printf("  LLM model: %s (%s, %s)\n", out.LLMModel, out.LLMProvider, out.LLMURL)
	if out.ConfigFile != "" {
		cmd.Printf("  Config file: %s\n", out.ConfigFile)
	}
	if check {
		cmd.Printf("  Embedding service: %s\n", out.EmbeddingCheck)
		cmd.Printf("  LLM service: %s\n", out.LLMCheck)
	}
	return nil
}

func checkResult(err error) string {
	if err != nil {
		return "unreachable: " + err.Error()
	}
	return "ok"
}
