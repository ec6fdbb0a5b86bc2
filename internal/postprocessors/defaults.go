package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): characters per chunk (default: 1000)
//   - overlap (int): characters shared by adjacent chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	size, hasSize := getIntFromConfig(cfg, "chunk_size")
	overlap, hasOverlap := getIntFromConfig(cfg, "overlap")

	if hasSize && size <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidInput, size)
	}
	if hasOverlap && overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidInput, overlap)
	}
	if hasSize && hasOverlap && overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk_size %d",
			domain.ErrInvalidInput, overlap, size)
	}

	var opts []chunker.Option
	if hasSize {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if hasOverlap {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64 and float64 as produced by TOML and JSON decoders.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
