package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce is the quiet period after a file event before reloading,
// so editors that write in several steps trigger a single reload.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the catalog whenever the file at path changes. It blocks
// until ctx is cancelled. A failed reload keeps the previous snapshot and is
// only logged, so a half-written file never takes routing down.
func (c *Catalog) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file, which would
	// invalidate a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("catalog: watch %q: %w", dir, err)
	}

	c.logger.Info("watching catalog file", zap.String("path", path))

	var debounce *time.Timer
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("catalog watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("catalog: watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := c.Reload(path); err != nil {
					c.logger.Error("catalog reload failed, keeping previous snapshot",
						zap.String("path", path),
						zap.Error(err))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("catalog: watcher errors channel closed")
			}
			c.logger.Error("catalog watcher error", zap.Error(err))
		}
	}
}
