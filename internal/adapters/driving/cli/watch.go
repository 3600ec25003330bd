package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/orion/internal/logger"
)

// watchDebounce is how long a file must be quiet before it is re-ingested.
const watchDebounce = 500 * time.Millisecond

// watchTargets tracks what a watcher was asked to follow.
// Directories are followed recursively; files only by exact path.
type watchTargets struct {
	dirs  map[string]bool
	files map[string]bool
	add   func(path string) error
}

func newWatchTargets(add func(string) error) *watchTargets {
	return &watchTargets{
		dirs:  make(map[string]bool),
		files: make(map[string]bool),
		add:   add,
	}
}

// follow registers a file or, for a directory, it and every non-hidden subdirectory.
func (t *watchTargets) follow(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		t.files[path] = true
		return t.addDir(filepath.Dir(path))
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		t.dirs[p] = true
		return t.addDir(p)
	})
}

func (t *watchTargets) addDir(dir string) error {
	if t.add == nil {
		return nil
	}
	if err := t.add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

// handle returns the file to re-ingest for event, if any.
// New directories under a followed directory are followed too.
func (t *watchTargets) handle(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	path := filepath.Clean(event.Name)
	if isHidden(filepath.Base(path)) {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) && t.dirs[filepath.Dir(path)] {
			if err := t.follow(path); err != nil {
				logger.Warn("watch: %v", err)
			}
		}
		return "", false
	}

	if !info.Mode().IsRegular() {
		return "", false
	}
	if t.files[path] || t.dirs[filepath.Dir(path)] {
		return path, true
	}
	return "", false
}

// watchPaths re-ingests created or modified files until ctx is cancelled.
func watchPaths(ctx context.Context, paths []string, ing *ingester) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	targets := newWatchTargets(watcher.Add)
	for _, path := range paths {
		if err := targets.follow(path); err != nil {
			return err
		}
	}

	ing.cmd.Println("Watching for changes (Ctrl+C to stop)...")

	ticker := time.NewTicker(watchDebounce / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := targets.handle(event); ok {
				logger.Debug("watch: %s %s", event.Op, path)
				pending[path] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchDebounce {
					continue
				}
				delete(pending, path)
				_ = ing.ingestFile(ctx, path)
			}
		}
	}
}
