// Package cli implements the ragent command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driving"
	"github.com/custodia-labs/ragent/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Options carries the global flag values into the bootstrap function.
// Empty strings mean the flag was not given.
type Options struct {
	ConfigDir  string
	DocsDir    string
	DataDir    string
	Collection string
	Verbose    bool
}

// Services holds the wired services the commands run against.
type Services struct {
	Ingest   driving.IngestService
	RAG      driving.RAGService
	Store    driving.StoreService
	Settings driving.SettingsService

	// Settings resolved for this invocation, flags applied.
	Effective domain.Settings

	// Close releases the vector store and HTTP clients. May be nil.
	Close func() error
}

// BootstrapFunc builds the services for one invocation from the global flags.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	opts      Options
	bootstrap BootstrapFunc

	ingestService   driving.IngestService
	ragService      driving.RAGService
	storeService    driving.StoreService
	settingsService driving.SettingsService
	effective       = domain.DefaultSettings()
	closeServices   func() error
)

// skipBootstrap marks commands that run without any services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "ragent",
	Short: "Ask questions about your own text documents",
	Long: `ragent answers questions from a directory of plain-text documents.

Documents are split into chunks, embedded by a local inference server and
stored in a vector store on disk. Questions retrieve the most similar chunks
and a language model answers from them.

  ragent ingest                 # load ./agent-doc into the store
  ragent query "How do I deploy?" -s
  ragent status`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print pipeline details to stderr")
	flags.StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default ~/.ragent)")
	flags.StringVar(&opts.DocsDir, "docs-dir", "", "documents directory (default "+domain.DefaultDocsDir+")")
	flags.StringVar(&opts.DataDir, "data-dir", "", "vector store directory (default "+domain.DefaultDataDir+")")
	flags.StringVar(&opts.Collection, "collection", "", "vector store collection (default "+domain.DefaultCollection+")")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command and the MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the function that wires services before each command.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs already wired services.
// A nil argument clears them.
func SetServices(s *Services) {
	if s == nil {
		ingestService, ragService, storeService, settingsService = nil, nil, nil, nil
		effective = domain.DefaultSettings()
		closeServices = nil
		return
	}
	ingestService = s.Ingest
	ragService = s.RAG
	storeService = s.Store
	settingsService = s.Settings
	effective = s.Effective
	closeServices = s.Close
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	if err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	return nil
}

// describeError turns domain failures into the message shown to the operator.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Sprintf("Error: cannot reach the embedding service (%s at %s): %v",
			effective.Embedding.Model, effective.Embedding.BaseURL, err)
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return fmt.Sprintf("Error: cannot reach the generation service (%s at %s): %v",
			effective.LLM.Model, effective.LLM.BaseURL, err)
	case errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Sprintf("Error: %v. Run 'ragent clear' and ingest again after changing the embedding model.", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// Main runs the CLI and returns the process exit code.
// Command results go to stdout, progress and errors to stderr.
// Services are released even when the command failed.
func Main(ctx context.Context) int {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	err := ExecuteContext(ctx)
	if closeErr := teardown(rootCmd, nil); closeErr != nil {
		logger.Warn("%v", closeErr)
	}
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), describeError(err))
		return 1
	}
	return 0
}
