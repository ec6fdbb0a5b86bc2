package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all data from the vector store",
	Long: `Removes every chunk of the configured collection. The store directory
is deleted once no collection remains in it.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	if !clearYes {
		cmd.Print("Are you sure you want to clear the vector store? [y/N]: ")
		if !confirmed(bufio.NewReader(cmd.InOrStdin())) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	cleared, err := storeService.Clear(cmd.Context())
	if err != nil {
		return err
	}
	if cleared {
		cmd.Println("Vector store cleared successfully.")
	} else {
		cmd.Println("Vector store was already empty.")
	}
	return nil
}

// confirmed reads one answer line; only y or yes confirms.
func confirmed(reader *bufio.Reader) bool {
	switch strings.ToLower(readLine(reader)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
