package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/core/domain"
)

var (
	contextHint string
	contextMax  int
	contextPool int
	contextJSON bool
)

var contextCmd = &cobra.Command{
	Use:   "context [keyword]",
	Short: "Select a balanced context set for a keyword",
	Long: `Retrieves a candidate pool for the keyword and re-ranks it into a
deduplicated context set balancing keyword relevance against source and
section diversity.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextHint, "hint", "", "topic hint biasing relevance scoring")
	contextCmd.Flags().IntVar(&contextMax, "max", 10, "maximum chunks in the context set")
	contextCmd.Flags().IntVar(&contextPool, "pool", 30, "retrieval pool size fed to the selector")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	selected, err := selectContext(cmd, args[0], contextHint, contextPool, contextMax)
	if err != nil {
		return err
	}

	if contextJSON {
		return outputChunksJSON(cmd, selected)
	}
	return outputChunksTable(cmd, selected)
}

// selectContext runs retrieve-then-select for a keyword.
func selectContext(cmd *cobra.Command, keyword, hint string, pool, max int) ([]domain.ScoredChunk, error) {
	retriever, cleanup, err := loadRetriever()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	candidates, err := retriever.Retrieve(cmd.Context(), keyword, pool)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	selector, err := newSelector()
	if err != nil {
		return nil, err
	}
	return selector.Select(candidates, keyword, hint, max), nil
}
