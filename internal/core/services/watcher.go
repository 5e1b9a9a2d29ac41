package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/negah-labs/grounder/internal/core/ports/driving"
	"github.com/negah-labs/grounder/internal/logger"
)

// DefaultDebounce is the quiet period after the last corpus change
// before a rebuild fires. Editors and sync tools emit bursts of events
// per save; one rebuild per burst is enough.
const DefaultDebounce = 2 * time.Second

// Watcher rebuilds the index whenever corpus files change. A build fully
// replaces the prior index/metadata pair, so every change triggers a full
// rebuild rather than an incremental update.
type Watcher struct {
	build    driving.BuildService
	debounce time.Duration
}

// NewWatcher creates a watcher over the given build service. A
// non-positive debounce falls back to the default.
func NewWatcher(build driving.BuildService, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{build: build, debounce: debounce}
}

// Watch blocks until ctx is cancelled, rebuilding after each debounced
// burst of .html/.htm changes under inputDir. A failed rebuild is logged
// and watching continues; the previous index pair stays in place.
func (w *Watcher) Watch(ctx context.Context, inputDir, indexPath, metaPath string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(inputDir); err != nil {
		return fmt.Errorf("watch %s: %w", inputDir, err)
	}
	logger.Info("watching %s", inputDir)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isCorpusFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("corpus change: %s %s", ev.Op, ev.Name)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-pending:
			timer = nil
			pending = nil

			info, err := w.build.Build(ctx, inputDir, indexPath, metaPath)
			if err != nil {
				logger.Warn("rebuild failed, keeping previous index: %v", err)
				continue
			}
			logger.Info("rebuilt index %s: %d chunks from %d documents",
				info.ID, info.Chunks, info.Documents)
		}
	}
}
