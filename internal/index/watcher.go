package index

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDebounce coalesces the burst of events a single save produces.
const DefaultReloadDebounce = 250 * time.Millisecond

// Watch reloads the index whenever the snapshot at path is written or
// replaced. It watches the parent directory because Save replaces the file by
// rename. A failed reload is logged and the previous state is kept.
// Watch returns once the watcher is installed; it stops when ctx is done.
func (ix *Index) Watch(ctx context.Context, path string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	go ix.watchLoop(ctx, w, target, debounce)
	return nil
}

func (ix *Index) watchLoop(ctx context.Context, w *fsnotify.Watcher, target string, debounce time.Duration) {
	defer func() { _ = w.Close() }()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := ix.Load(target); err != nil {
				ix.logger.Warn("Index reload failed, keeping previous state",
					zap.String("path", target), zap.Error(err))
				continue
			}
			ix.logger.Info("Index reloaded after snapshot change", zap.String("path", target))

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			ix.logger.Warn("Snapshot watcher error", zap.Error(err))
		}
	}
}
