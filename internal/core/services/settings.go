package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "RAGENT_"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDocsDir        = "docs_dir"
	KeyDataDir        = "data_dir"
	KeyCollection     = "collection"
	KeyTopK           = "top_k"
	KeyChunkSize      = "chunking.size"
	KeyChunkOverlap   = "chunking.overlap"
	KeyEmbedProvider  = "embedding.provider"
	KeyEmbedModel     = "embedding.model"
	KeyEmbedBaseURL   = "embedding.base_url"
	KeyEmbedAPIKey    = "embedding.api_key"
	KeyEmbedTimeout   = "embedding.timeout"
	KeyEmbedRate      = "embedding.requests_per_second"
	KeyLLMProvider    = "llm.provider"
	KeyLLMModel       = "llm.model"
	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMAPIKey      = "llm.api_key"
	KeyLLMTimeout     = "llm.timeout"
	KeyLLMTemperature = "llm.temperature"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindDuration
)

var settingKinds = map[string]settingKind{
	KeyDocsDir:        kindString,
	KeyDataDir:        kindString,
	KeyCollection:     kindString,
	KeyTopK:           kindInt,
	KeyChunkSize:      kindInt,
	KeyChunkOverlap:   kindInt,
	KeyEmbedProvider:  kindString,
	KeyEmbedModel:     kindString,
	KeyEmbedBaseURL:   kindString,
	KeyEmbedAPIKey:    kindString,
	KeyEmbedTimeout:   kindDuration,
	KeyEmbedRate:      kindFloat,
	KeyLLMProvider:    kindString,
	KeyLLMModel:       kindString,
	KeyLLMBaseURL:     kindString,
	KeyLLMAPIKey:      kindString,
	KeyLLMTimeout:     kindDuration,
	KeyLLMTemperature: kindFloat,
}

// SettingsService resolves settings from defaults, the config store and
// RAGENT_* environment variables, in increasing precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case connectivity checks always pass.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// EnvVar returns the environment variable that overrides key,
// e.g. chunking.size -> RAGENT_CHUNKING_SIZE.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys returns every configurable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

// Get resolves the current settings. The result is not validated;
// callers apply their own overrides first and then call Validate.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	keys := s.Keys()

	if s.configStore != nil {
		for _, key := range keys {
			val, ok := s.configStore.Get(key)
			if !ok {
				continue
			}
			if err := applySetting(&settings, key, val); err != nil {
				return nil, fmt.Errorf("config %s: %w", key, err)
			}
		}
	}

	for _, key := range keys {
		val, ok := os.LookupEnv(EnvVar(key))
		if !ok || val == "" {
			continue
		}
		if err := applySetting(&settings, key, val); err != nil {
			return nil, fmt.Errorf("env %s: %w", EnvVar(key), err)
		}
	}

	return &settings, nil
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if s.configStore == nil {
		return errors.New("config store not configured")
	}

	typed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := applySetting(settings, key, typed); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	// Durations are stored as text so the file stays readable.
	if d, ok := typed.(time.Duration); ok {
		typed = d.String()
	}
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(settings *domain.Settings) error {
	if s.aiValidator == nil || settings == nil {
		return nil
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(settings *domain.Settings) error {
	if s.aiValidator == nil || settings == nil {
		return nil
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// parseSetting converts text into the typed value stored for a key.
func parseSetting(kind settingKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		return parseDuration(value)
	default:
		return value, nil
	}
}

// applySetting writes a raw value (from TOML, env or text) into settings.
//
//nolint:gocyclo // One case per key.
func applySetting(s *domain.Settings, key string, val any) error {
	switch settingKinds[key] {
	case kindInt:
		n, err := toInt(val)
		if err != nil {
			return err
		}
		switch key {
		case KeyTopK:
			s.TopK = n
		case KeyChunkSize:
			s.Chunking.Size = n
		case KeyChunkOverlap:
			s.Chunking.Overlap = n
		}
	case kindFloat:
		f, err := toFloat(val)
		if err != nil {
			return err
		}
		switch key {
		case KeyEmbedRate:
			s.Embedding.RequestsPerSecond = f
		case KeyLLMTemperature:
			s.LLM.Temperature = f
		}
	case kindDuration:
		d, err := toDuration(val)
		if err != nil {
			return err
		}
		switch key {
		case KeyEmbedTimeout:
			s.Embedding.Timeout = d
		case KeyLLMTimeout:
			s.LLM.Timeout = d
		}
	default:
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		switch key {
		case KeyDocsDir:
			s.DocsDir = str
		case KeyDataDir:
			s.DataDir = str
		case KeyCollection:
			s.Collection = str
		case KeyEmbedProvider:
			s.Embedding.Provider = domain.AIProvider(str)
		case KeyEmbedModel:
			s.Embedding.Model = str
		case KeyEmbedBaseURL:
			s.Embedding.BaseURL = str
		case KeyEmbedAPIKey:
			s.Embedding.APIKey = str
		case KeyLLMProvider:
			s.LLM.Provider = domain.AIProvider(str)
		case KeyLLMModel:
			s.LLM.Model = str
		case KeyLLMBaseURL:
			s.LLM.BaseURL = str
		case KeyLLMAPIKey:
			s.LLM.APIKey = str
		}
	}
	return nil
}

func toInt(val any) (int, error) {
	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("expected integer, got %T", val)
	}
}

func toFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", val)
	}
}

func toDuration(val any) (time.Duration, error) {
	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case string:
		return parseDuration(v)
	default:
		return 0, fmt.Errorf("expected duration, got %T", val)
	}
}

// parseDuration accepts Go durations ("90s", "2m") or a plain number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if secs, err := strconv.Atoi(s); err == nil {
		d = time.Duration(secs) * time.Second
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
