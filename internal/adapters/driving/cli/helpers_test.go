package cli

import (
	"bytes"
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragent/internal/connectors/filesystem"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/core/services"
	"github.com/custodia-labs/ragent/internal/normalisers/plaintext"
	"github.com/custodia-labs/ragent/internal/postprocessors"
)

// wordEmbedder hashes lowercase words into buckets.
type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 32)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		vec[h.Sum32()%32]++
	}
	return vec, nil
}

func (e wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (wordEmbedder) Dimensions() int              { return 32 }
func (wordEmbedder) ModelName() string            { return "words" }
func (wordEmbedder) Ping(_ context.Context) error { return nil }
func (wordEmbedder) Close() error                 { return nil }

// fakeLLM returns a canned reply.
type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// fakeValidator fails every check with err.
type fakeValidator struct {
	err error
}

func (f *fakeValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return f.err }
func (f *fakeValidator) ValidateLLM(_ *domain.LLMSettings) error             { return f.err }

// testEnv is a fully wired CLI over in-memory stores.
type testEnv struct {
	settings  domain.Settings
	store     *memory.VectorStore
	config    *memory.ConfigStore
	llm       *fakeLLM
	validator *fakeValidator
	closed    int
}

func resetFlags() {
	opts = Options{}
	ingestDir = ""
	queryShowSources, queryTopK, queryJSON = false, 0, false
	clearYes = false
	statusJSON, statusCheck = false, false
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings:  domain.DefaultSettings(),
		store:     memory.NewVectorStore(wordEmbedder{}),
		config:    memory.NewConfigStore(),
		llm:       &fakeLLM{reply: "The deploy script lives in ops/deploy.sh."},
		validator: &fakeValidator{},
	}
	env.settings.DocsDir = t.TempDir()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, env.settings.PipelineConfig())
	require.NoError(t, err)

	loader := filesystem.New(plaintext.New())
	settingsSvc := services.NewSettingsService(env.config, env.validator)

	resetFlags()
	SetBootstrap(nil)
	SetServices(&Services{
		Ingest:    services.NewIngestService(loader, pipeline, env.store),
		RAG:       services.NewRAGService(env.store, env.llm, env.settings),
		Store:     services.NewStoreService(env.store, env.settings, settingsSvc.Path()),
		Settings:  settingsSvc,
		Effective: env.settings,
		Close: func() error {
			env.closed++
			return nil
		},
	})
	t.Cleanup(func() {
		SetServices(nil)
		SetBootstrap(nil)
		resetFlags()
	})
	return env
}

func (e *testEnv) writeDoc(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.settings.DocsDir, name), []byte(content), 0o600))
}

// execute runs the root command with args, feeding stdin, and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
