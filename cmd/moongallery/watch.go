package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/taigrr/moongallery/internal/config"
)

// reloadDelay coalesces the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// watchConfig sends the config at path each time it is saved and parses
// cleanly. Invalid edits are logged and skipped. The directory is watched
// rather than the file so editors that save by rename are seen too.
func watchConfig(ctx context.Context, path string, logger *slog.Logger) (<-chan config.Config, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}

	out := make(chan config.Config, 1)
	name := filepath.Clean(path)
	go func() {
		defer w.Close()
		defer close(out)

		timer := time.NewTimer(reloadDelay)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name || !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create)) {
					continue
				}
				timer.Reset(reloadDelay)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher", "err", err)
			case <-timer.C:
				cfg, err := config.Load(path)
				if err != nil {
					logger.Warn("config reload skipped", "err", err)
					continue
				}
				logger.Info("config reloaded", "path", path)
				select {
				case <-out:
				default:
				}
				out <- cfg
			}
		}
	}()
	return out, nil
}
