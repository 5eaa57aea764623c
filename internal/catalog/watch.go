package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"storebot/internal/logger"
)

// DefaultDebounce groups the bursts of events editors and exporters produce when
// saving a file.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads the catalog whenever the CSV file is written, created or renamed
// into place. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create catalog watcher")
	}
	defer watcher.Close()

	// Watch the directory: many tools replace the file instead of writing to it.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	target := filepath.Clean(s.path)
	logger.LogInfo("Watching %s for catalog changes", target)

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.LogDebug("Catalog file event: %s", event)
			pending = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.LogWarn("Catalog watcher error: %v", err)

		case <-pending:
			pending = nil
			_ = s.Reload()
		}
	}
}
