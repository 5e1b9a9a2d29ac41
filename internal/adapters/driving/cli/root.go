// Package cli implements the grounder command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/adapters/driven/config/file"
	"github.com/negah-labs/grounder/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	indexFlag string
	metaFlag  string

	configStore *file.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "grounder",
	Short: "Build and query a grounded retrieval index over an HTML corpus",
	Long: `grounder turns a directory of HTML documents into a searchable
vector index: documents are split into sections, chunked into
overlapping token windows, embedded, and stored as an index blob with a
parallel metadata file. Retrieval and context selection then serve
grounded text generation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// Credentials come from the environment; a local .env file is an
		// optional convenience and never overrides real env vars.
		_ = godotenv.Load()

		var err error
		configStore, err = file.NewConfigStore(os.Getenv("GROUNDER_CONFIG_DIR"))
		if err != nil {
			return fmt.Errorf("open config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&indexFlag, "index", "", "index file path (default from config, else grounder.index)")
	rootCmd.PersistentFlags().StringVar(&metaFlag, "meta", "", "metadata file path (default from config, else grounder.meta.jsonl)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
