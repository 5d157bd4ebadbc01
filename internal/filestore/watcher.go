package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the backing file was changed by someone
// other than this process.
type ChangeCallback func()

const watchDebounce = 200 * time.Millisecond

// Watch observes the backing file until ctx is cancelled. Bursts of
// file-system events are debounced; writes whose content matches this
// process's last write are ignored, so only external edits reach cb.
//
// The parent directory is watched rather than the file itself because
// atomic writes replace the file by rename.
func (c *Collection) Watch(ctx context.Context, cb ChangeCallback) error {
	abs, err := c.store.Resolve(c.file)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filestore: watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("filestore: watch %s: %w", filepath.Dir(abs), err)
	}
	c.logger.Info("watcher: started", slog.String("file", abs))

	var debounce *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C
			return
		}
		debounce.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			c.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			debounce, fire = nil, nil
			data, readErr := c.store.Read(c.file)
			if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
				c.logger.Warn("watcher: read failed", slog.String("error", readErr.Error()))
				continue
			}
			if readErr == nil && c.ownWrite(data) {
				continue
			}
			c.logger.Debug("watcher: external change", slog.String("file", abs))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
