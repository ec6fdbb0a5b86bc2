// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService generates answer text from a prompt.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI-compatible servers (llama.cpp, LM Studio, vLLM)
type LLMService interface {
	// Generate produces a completion for the prompt.
	// Failures are reported as domain.ErrGenerationUnavailable.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// System is the system instruction sent ahead of the prompt.
	System string

	// MaxTokens is the maximum number of tokens to generate. Zero means server default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
