package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

var (
	draftHint        string
	draftMaxContext  int
	draftMaxTokens   int
	draftTemperature float64
)

var draftCmd = &cobra.Command{
	Use:   "draft [keyword]",
	Short: "Generate a draft grounded in retrieved context",
	Long: `Selects a context set for the keyword and issues one generation
call with the selected chunks as source material. The draft is printed
to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringVar(&draftHint, "hint", "", "topic hint biasing context selection")
	draftCmd.Flags().IntVar(&draftMaxContext, "max-context", 10, "maximum chunks in the context set")
	draftCmd.Flags().IntVar(&draftMaxTokens, "max-tokens", 1500, "generation token budget")
	draftCmd.Flags().Float64Var(&draftTemperature, "temperature", 0.7, "generation temperature")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	selected, err := selectContext(cmd, keyword, draftHint, draftMaxContext*3, draftMaxContext)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("%w: no context found for %q", domain.ErrNotFound, keyword)
	}

	llm, err := newLLMService()
	if err != nil {
		return err
	}
	defer llm.Close()

	draft, err := llm.Generate(cmd.Context(), draftPrompt(keyword, draftHint, selected), driven.GenerateOptions{
		MaxTokens:   draftMaxTokens,
		Temperature: draftTemperature,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	cmd.Println(strings.TrimSpace(draft))
	return nil
}

// draftPrompt assembles the grounded generation prompt: instructions,
// then the selected chunks as numbered sources.
func draftPrompt(keyword, hint string, context []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Write an article about \"")
	b.WriteString(keyword)
	b.WriteString("\".")
	if hint != "" {
		b.WriteString(" Focus: ")
		b.WriteString(hint)
		b.WriteString(".")
	}
	b.WriteString("\nGround every claim in the sources below. Do not invent facts.\n\nSources:\n")

	for i, sc := range context {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, sc.Chunk.SectionTitle, sc.Chunk.SourceDocument, sc.Chunk.Text)
	}
	return b.String()
}
