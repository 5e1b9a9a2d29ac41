package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/adapters/driven/storage/sqlite"
)

var (
	buildsLimit int
	buildsJSON  bool
)

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "List recorded index builds, newest first",
	RunE:  runBuilds,
}

func init() {
	buildsCmd.Flags().IntVarP(&buildsLimit, "limit", "n", 10, "maximum builds to list")
	buildsCmd.Flags().BoolVar(&buildsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(buildsCmd)
}

func runBuilds(cmd *cobra.Command, _ []string) error {
	catalog, err := sqlite.NewCatalog(catalogPath())
	if err != nil {
		return fmt.Errorf("open build catalog: %w", err)
	}
	defer catalog.Close()

	builds, err := catalog.List(cmd.Context(), buildsLimit)
	if err != nil {
		return err
	}

	if buildsJSON {
		data, err := json.MarshalIndent(builds, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal builds: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(builds) == 0 {
		cmd.Println("No builds recorded.")
		return nil
	}

	for _, b := range builds {
		cmd.Printf("%s  %s\n", b.CreatedAt.Local().Format(time.DateTime), b.ID)
		cmd.Printf("  %s -> %s (%d docs, %d chunks, %s)\n",
			b.InputDir, b.IndexPath, b.Documents, b.Chunks, b.Model)
	}
	return nil
}
