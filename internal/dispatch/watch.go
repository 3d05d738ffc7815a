package dispatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 150 * time.Millisecond

// ReloadCallback is called after a successful reload with the new kinds.
type ReloadCallback func(p *Policy)

// WatchPolicy reloads path into p whenever the file changes, until ctx is
// cancelled. The parent directory is watched so editors that replace the
// file by rename are picked up. A file that fails to load leaves the
// current policy in place.
func WatchPolicy(ctx context.Context, p *Policy, path string, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("policy watcher: started", slog.String("path", abs))

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(reloadDebounce)
			debounceCh = debounce.C
		} else {
			debounce.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("policy watcher: stopped")
			return nil

		case <-debounceCh:
			kinds, loadErr := LoadPolicyFile(abs)
			if loadErr != nil {
				logger.Warn("policy watcher: reload failed", slog.String("error", loadErr.Error()))
				continue
			}
			p.Set(kinds)
			logger.Info("policy watcher: reloaded", slog.Int("kinds", len(kinds)))
			if cb != nil {
				cb(p)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("policy watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
