package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/adapters/driven/publisher/wordpress"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

var (
	publishTitle  string
	publishFile   string
	publishStatus string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish an HTML document to WordPress",
	Long: `Posts an HTML file to the configured WordPress site via the REST
API. Credentials come from WORDPRESS_URL, WORDPRESS_USERNAME, and
WORDPRESS_APP_PASSWORD.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishTitle, "title", "", "post title (required)")
	publishCmd.Flags().StringVar(&publishFile, "file", "", "HTML body file (required)")
	publishCmd.Flags().StringVar(&publishStatus, "status", wordpress.DefaultStatus, "post status: draft or publish")
	publishCmd.MarkFlagRequired("title")
	publishCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	body, err := os.ReadFile(publishFile)
	if err != nil {
		return fmt.Errorf("read post body: %w", err)
	}

	client, err := wordpress.NewClient(wordpress.Config{
		SiteURL:     os.Getenv("WORDPRESS_URL"),
		Username:    os.Getenv("WORDPRESS_USERNAME"),
		AppPassword: os.Getenv("WORDPRESS_APP_PASSWORD"),
	})
	if err != nil {
		return err
	}

	result, err := client.Publish(cmd.Context(), driven.Post{
		Title:   publishTitle,
		Content: string(body),
		Status:  publishStatus,
	})
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	cmd.Printf("Published post %d", result.ID)
	if result.Link != "" {
		cmd.Printf(": %s", result.Link)
	}
	cmd.Println()
	return nil
}
