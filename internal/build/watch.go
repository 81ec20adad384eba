package build

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reruns a build whenever a TSV file under the watched
// directories changes. Bursts of events are coalesced.
type Watcher struct {
	Debounce time.Duration
	Log      *zap.Logger
}

// Watch blocks until ctx is done, calling rebuild after each settled burst
// of .tsv changes. Rebuild errors are logged, not returned.
func (w *Watcher) Watch(ctx context.Context, roots []string, rebuild func(context.Context) error) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("build: create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range watchDirs(roots) {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("build: watch %s: %w", dir, err)
		}
		log.Debug("watching", zap.String("dir", dir))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".tsv") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("tsv changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			pending = true
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			log.Info("rebuilding after tsv change")
			if err := rebuild(ctx); err != nil {
				log.Error("rebuild failed", zap.Error(err))
			}
		}
	}
}

// watchDirs expands roots to every directory below them; fsnotify does not
// watch recursively. A root that is a file contributes its directory.
func watchDirs(roots []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				add(p)
			} else if p == root {
				add(filepath.Dir(p))
			}
			return nil
		})
	}
	return out
}
