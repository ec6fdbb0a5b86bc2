package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/postprocessors/chunker"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("echo"))
	assert.Empty(t, r.Names())

	r.Register("echo", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &stubProcessor{name: name}, nil
	})

	require.True(t, r.Has("echo"))
	proc, err := r.Build("echo", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", proc.Name())
}

func TestRegistry_BuildUnknown(t *testing.T) {
	_, err := NewRegistry().Build("missing", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"gamma", "alpha", "beta"} {
		r.Register(n, func(map[string]any) (driven.PostProcessor, error) { return &stubProcessor{}, nil })
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, r.Names())
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]any
		wantSize    int
		wantOverlap int
		wantErr     bool
	}{
		{"nil config uses defaults", nil, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap, false},
		{"size and overlap", map[string]any{"chunk_size": 500, "overlap": 100}, 500, 100, false},
		{"zero overlap kept", map[string]any{"chunk_size": 300, "overlap": 0}, 300, 0, false},
		{"toml integers", map[string]any{"chunk_size": int64(800), "overlap": int64(50)}, 800, 50, false},
		{"json numbers", map[string]any{"chunk_size": float64(600)}, 600, chunker.DefaultChunkOverlap, false},
		{"non-positive size", map[string]any{"chunk_size": 0}, 0, 0, true},
		{"negative overlap", map[string]any{"overlap": -5}, 0, 0, true},
		{"overlap not below size", map[string]any{"chunk_size": 100, "overlap": 100}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := buildChunker(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)

			c, ok := proc.(*chunker.Processor)
			require.True(t, ok)
			assert.Equal(t, "chunker", c.Name())
			assert.Equal(t, tt.wantSize, c.ChunkSize())
			assert.Equal(t, tt.wantOverlap, c.Overlap())
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    map[string]any
		want   int
		wantOK bool
	}{
		{"int", map[string]any{"n": 7}, 7, true},
		{"int64", map[string]any{"n": int64(8)}, 8, true},
		{"float64", map[string]any{"n": float64(9)}, 9, true},
		{"string", map[string]any{"n": "10"}, 0, false},
		{"missing", map[string]any{"m": 1}, 0, false},
		{"nil map", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := getIntFromConfig(tt.cfg, "n")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
