package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/core/domain"
)

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve the chunks nearest to a query",
	Long: `Embeds the query and returns the most similar chunks from the
index, deduplicated. Fewer results than requested means the corpus has
run out of distinct content, not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top", "n", 5, "number of chunks to retrieve")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	retriever, cleanup, err := loadRetriever()
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := retriever.Retrieve(cmd.Context(), args[0], retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return outputChunksJSON(cmd, results)
	}
	return outputChunksTable(cmd, results)
}

func outputChunksJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunksTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, sc := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, sc.Chunk.SectionTitle, sc.Score)
		cmd.Printf("      %s  chunk %d  tokens [%d,%d)\n",
			sc.Chunk.SourceDocument, sc.Chunk.ChunkIndex, sc.Chunk.StartToken, sc.Chunk.EndToken)
		cmd.Printf("      %s\n", snippet(sc.Chunk.Text, 160))
		cmd.Println()
	}
	return nil
}

// snippet returns the first line of text, truncated to max runes.
func snippet(text string, max int) string {
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
