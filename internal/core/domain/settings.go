package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an inference server protocol for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any server speaking the OpenAI HTTP API
	// (llama.cpp server, LM Studio, vLLM, or OpenAI itself).
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible server"
	default:
		return unknownDescription
	}
}

// Default configuration values.
const (
	DefaultDocsDir        = "agent-doc"
	DefaultDataDir        = "data/vector_store"
	DefaultCollection     = "agent_docs"
	DefaultBaseURL        = "http://localhost:11434"
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultLLMModel       = "mistral"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 4
	DefaultTemperature    = 0.1
	DefaultEmbedTimeout   = 30 * time.Second
	DefaultLLMTimeout     = 120 * time.Second
)

// EmbeddingSettings holds embedding service configuration.
type EmbeddingSettings struct {
	// Provider is the inference server protocol.
	Provider AIProvider

	// Model is the embedding model identifier.
	Model string

	// BaseURL is the inference endpoint base URL.
	BaseURL string

	// APIKey is sent as a bearer token (OpenAI-compatible servers only).
	APIKey string

	// Timeout bounds each embedding request.
	Timeout time.Duration

	// RequestsPerSecond paces embedding requests; zero means unlimited.
	RequestsPerSecond float64
}

// LLMSettings holds generation service configuration.
type LLMSettings struct {
	// Provider is the inference server protocol.
	Provider AIProvider

	// Model is the generation model identifier.
	Model string

	// BaseURL is the inference endpoint base URL.
	BaseURL string

	// APIKey is sent as a bearer token (OpenAI-compatible servers only).
	APIKey string

	// Timeout bounds each generation request.
	Timeout time.Duration

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// ChunkingSettings controls document splitting granularity.
type ChunkingSettings struct {
	// Size is the target chunk length in characters.
	Size int

	// Overlap is the number of characters shared by adjacent chunks.
	Overlap int
}

// Settings holds all application settings.
// It is constructed once at process start and passed into every component.
type Settings struct {
	// DocsDir is the directory scanned for .txt documents.
	DocsDir string

	// DataDir is the persistence directory of the vector store.
	DataDir string

	// Collection is the vector store collection name.
	Collection string

	// Embedding holds embedding service settings.
	Embedding EmbeddingSettings

	// LLM holds generation service settings.
	LLM LLMSettings

	// Chunking holds splitter settings.
	Chunking ChunkingSettings

	// TopK is the default number of chunks retrieved per question.
	TopK int
}

// DefaultSettings returns settings with sensible defaults.
// Both services point at a local Ollama instance.
func DefaultSettings() Settings {
	return Settings{
		DocsDir:    DefaultDocsDir,
		DataDir:    DefaultDataDir,
		Collection: DefaultCollection,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
			BaseURL:  DefaultBaseURL,
			Timeout:  DefaultEmbedTimeout,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       DefaultLLMModel,
			BaseURL:     DefaultBaseURL,
			Timeout:     DefaultLLMTimeout,
			Temperature: DefaultTemperature,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		TopK: DefaultTopK,
	}
}

// Validate checks the settings for values no component can work with.
func (s Settings) Validate() error {
	switch {
	case s.DocsDir == "":
		return fmt.Errorf("%w: documents directory is empty", ErrInvalidInput)
	case s.DataDir == "":
		return fmt.Errorf("%w: data directory is empty", ErrInvalidInput)
	case s.Collection == "":
		return fmt.Errorf("%w: collection name is empty", ErrInvalidInput)
	case s.Chunking.Size <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, s.Chunking.Size)
	case s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size:
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidInput, s.Chunking.Size, s.Chunking.Overlap)
	case s.TopK <= 0:
		return fmt.Errorf("%w: top-k must be positive, got %d", ErrInvalidInput, s.TopK)
	case !s.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: embedding provider %q", ErrUnsupportedType, s.Embedding.Provider)
	case !s.LLM.Provider.IsValid():
		return fmt.Errorf("%w: llm provider %q", ErrUnsupportedType, s.LLM.Provider)
	case s.Embedding.Model == "":
		return fmt.Errorf("%w: embedding model is empty", ErrInvalidInput)
	case s.LLM.Model == "":
		return fmt.Errorf("%w: llm model is empty", ErrInvalidInput)
	case s.Embedding.RequestsPerSecond < 0:
		return fmt.Errorf("%w: embedding requests per second must not be negative", ErrInvalidInput)
	}
	return nil
}

// AllProviders returns every supported provider.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
// Unknown models are measured from the first embedding returned.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig returns the splitting pipeline configured from the chunking settings.
func (s Settings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": s.Chunking.Size,
				"overlap":    s.Chunking.Overlap,
			},
		},
	}
}
