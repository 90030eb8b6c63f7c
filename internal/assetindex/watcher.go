package assetindex

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before rescanning.
const DefaultDebounce = 100 * time.Millisecond

// Watch keeps the index in sync with the root directory until ctx is done.
// File events are debounced, then every touched package is rescanned in
// path order. Errors from individual rescans are logged, not returned.
func (ix *Index) Watch(ctx context.Context, debounce time.Duration) error {
	logger := ctxlog.FromContext(ctx)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
			logger.Debug("Watching directory.", "dir", path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !ix.matches(event.Name) {
				continue
			}
			logger.Debug("Asset file event.", "file", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			timer = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)

		case <-timer:
			timer = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			for _, p := range paths {
				if err := ix.Rescan(ctx, p); err != nil {
					logger.Error("Failed to rescan asset file.", "file", p, "error", err)
				}
			}
		}
	}
}

// matches reports whether path falls under the index pattern.
func (ix *Index) matches(path string) bool {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(ix.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}
