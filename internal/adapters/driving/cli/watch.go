package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/negah-labs/grounder/internal/core/services"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [corpus-dir]",
	Short: "Rebuild the index whenever the corpus changes",
	Long: `Watches the corpus directory and runs a full rebuild after each
debounced burst of .html/.htm changes. Runs until interrupted; a failed
rebuild keeps the previous index in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", services.DefaultDebounce, "quiet period before a rebuild fires")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := services.NewWatcher(builder, watchDebounce)
	err = watcher.Watch(ctx, args[0], resolveIndexPath(), resolveMetaPath())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
