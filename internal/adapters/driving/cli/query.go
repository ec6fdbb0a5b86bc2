package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/progress"
	"github.com/custodia-labs/ragent/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragent/internal/core/domain"
)

// previewLength is the number of characters shown per source.
const previewLength = 200

var (
	queryShowSources bool
	queryTopK        int
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question about your documents",
	Long: `Retrieves the chunks most similar to the question and asks the
language model to answer using only those chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVarP(&queryShowSources, "show-sources", "s", false, "show source documents")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer and sources as JSON")
	rootCmd.AddCommand(queryCmd)
}

// queryOutput is the JSON form of an answer.
type queryOutput struct {
	Answer  string         `json:"answer"`
	Model   string         `json:"model"`
	Sources []sourceOutput `json:"sources"`
}

type sourceOutput struct {
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if ragService == nil || storeService == nil {
		return errors.New("rag service not configured")
	}

	count, err := storeService.Count(cmd.Context())
	if err != nil {
		return err
	}
	if count == 0 {
		cmd.Println("No documents in vector store. Run 'ragent ingest' first.")
		return nil
	}

	if !queryJSON {
		cmd.Printf("Querying %d document chunks with %s...\n", count, effective.LLM.Model)
	}

	var answer *domain.Answer
	err = progress.Run(cmd.Context(), cmd.ErrOrStderr(), "Thinking...", func(ctx context.Context) error {
		var err error
		answer, err = ragService.Answer(ctx, args[0], queryTopK)
		return err
	})
	if err != nil {
		return err
	}

	if queryJSON {
		return outputQueryJSON(cmd, answer)
	}
	outputQueryText(cmd, answer)
	return nil
}

func outputQueryJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := queryOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Sources: make([]sourceOutput, len(answer.Sources)),
	}
	for i, s := range answer.Sources {
		out.Sources[i] = sourceOutput{
			Source:     s.Chunk.Source,
			Similarity: s.Similarity,
			Content:    s.Chunk.Content,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, answer *domain.Answer) {
	out := cmd.OutOrStdout()
	if !progress.IsTerminal(out) {
		cmd.Println("Answer:")
		cmd.Println(answer.Text)
		if queryShowSources && len(answer.Sources) > 0 {
			cmd.Println()
			cmd.Println("Sources:")
			for i, s := range answer.Sources {
				cmd.Printf("%d. %s\n", i+1, sourceName(s.Chunk))
				cmd.Printf("   %s\n", preview(s.Chunk.Content))
			}
		}
		return
	}

	st := styles.DefaultStyles()
	cmd.Println(st.RenderAnswer(answer.Text, terminalWidth(out)))
	if queryShowSources && len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println(st.Title.Render("Sources:"))
		for i, s := range answer.Sources {
			cmd.Println(st.RenderSource(i+1, sourceName(s.Chunk), preview(s.Chunk.Content)))
		}
	}
	cmd.Println()
}

func sourceName(c domain.Chunk) string {
	if c.Source == "" {
		return "unknown"
	}
	return c.Source
}

// preview returns the first previewLength characters of text, marking truncation with "...".
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
