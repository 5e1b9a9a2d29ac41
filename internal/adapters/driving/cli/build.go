package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [corpus-dir]",
	Short: "Build the vector index from a directory of HTML documents",
	Long: `Processes every .html/.htm file in the corpus directory in sorted
name order, splits each into sections, chunks the section text into
overlapping token windows, embeds the chunks, and writes the index blob
plus its metadata file. A build fully replaces any existing pair.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := builder.Build(cmd.Context(), args[0], resolveIndexPath(), resolveMetaPath())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	cmd.Printf("Build %s complete\n", info.ID)
	cmd.Printf("  documents:  %d\n", info.Documents)
	cmd.Printf("  chunks:     %d\n", info.Chunks)
	cmd.Printf("  model:      %s (%d dimensions)\n", info.Model, info.Dimensions)
	cmd.Printf("  index:      %s\n", info.IndexPath)
	cmd.Printf("  metadata:   %s\n", info.MetaPath)
	return nil
}
