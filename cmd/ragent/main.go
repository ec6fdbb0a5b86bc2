// Command ragent answers questions about a directory of text documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragent/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragent/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragent/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragent/internal/connectors/filesystem"
	"github.com/custodia-labs/ragent/internal/core/services"
	"github.com/custodia-labs/ragent/internal/logger"
	"github.com/custodia-labs/ragent/internal/normalisers/plaintext"
	"github.com/custodia-labs/ragent/internal/postprocessors"
)

// version is set by the release build.
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx)
	stop()
	os.Exit(code)
}

func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	resolved, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	settings := *resolved
	if opts.DocsDir != "" {
		settings.DocsDir = opts.DocsDir
	}
	if opts.DataDir != "" {
		settings.DataDir = opts.DataDir
	}
	if opts.Collection != "" {
		settings.Collection = opts.Collection
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Docs: %s, data: %s, collection: %s", settings.DocsDir, settings.DataDir, settings.Collection)

	aiServices, err := ai.NewServices(settings)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(sqlite.Config{Dir: settings.DataDir, Collection: settings.Collection}, aiServices.Embedding)
	if err != nil {
		return nil, errors.Join(err, aiServices.Close())
	}
	closeAll := func() error {
		return errors.Join(store.Close(), aiServices.Close())
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settings.PipelineConfig())
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}

	rag := services.NewRAGService(store, aiServices.LLM, settings)
	rag.SetPromptStore(prompts)

	return &cli.Services{
		Ingest:    services.NewIngestService(filesystem.New(plaintext.New()), pipeline, store),
		RAG:       rag,
		Store:     services.NewStoreService(store, settings, settingsService.Path()),
		Settings:  settingsService,
		Effective: settings,
		Close:     closeAll,
	}, nil
}
