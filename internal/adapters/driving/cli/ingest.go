package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/progress"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the documents directory into the vector store",
	Long: `Loads every .txt file directly inside the documents directory, splits
it into overlapping chunks, embeds the chunks and appends them to the
vector store. Running ingest twice stores the documents twice; use
'ragent clear' first to rebuild from scratch.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "documents directory (overrides --docs-dir)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := ingestDir
	if dir == "" {
		dir = effective.DocsDir
	}
	cmd.Printf("Ingesting documents from: %s\n", dir)

	var result *domain.IngestResult
	err := progress.Run(cmd.Context(), cmd.ErrOrStderr(),
		fmt.Sprintf("Embedding chunks with %s...", effective.Embedding.Model),
		func(ctx context.Context) error {
			var err error
			result, err = ingestService.Ingest(ctx, dir)
			return err
		})
	if errors.Is(err, domain.ErrEmptyInput) {
		cmd.Println("No documents found to ingest.")
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Printf("Successfully ingested %d chunks into the vector store.\n", result.Inserted)
	return nil
}
