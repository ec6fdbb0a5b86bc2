package driving

import "github.com/custodia-labs/ragent/internal/core/domain"

// SettingsService manages persisted application settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the environment.
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting given as text.
	Set(key, value string) error

	// Keys returns every configurable key.
	Keys() []string

	// Path returns the configuration file path.
	Path() string

	// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
	ValidateEmbeddingConfig(settings *domain.Settings) error

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig(settings *domain.Settings) error
}
