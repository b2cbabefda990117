package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Quiet period after the last file event before a change is reported.
// Editors typically produce several events per save.
const defaultDebounce = 250 * time.Millisecond

// Reports changes to a configuration file.
//
// The parent directory is watched rather than the file itself, so that
// editors and config management tools that replace the file (write to a
// temporary file, then rename) keep being observed.
type Watcher struct {
	path     string            // Absolute, cleaned path of the watched file.
	fsw      *fsnotify.Watcher // Underlying directory watcher.
	changes  chan struct{}     // Receives one value per coalesced change.
	debounce time.Duration     // Quiet period before a change is reported.
}

// Starts watching the file at path.
//
// The watcher must be closed when no longer needed, and [Watcher.Run] must
// be called for changes to be delivered.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatch, err)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("%w: watching %s: %w", ErrWatch, filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		fsw:      fsw,
		changes:  make(chan struct{}, 1),
		debounce: defaultDebounce,
	}, nil
}

// Returns the channel on which changes are reported.
//
// Pending changes are coalesced: a slow consumer sees at most one queued
// notification.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Processes file events until the context is cancelled or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("config file event", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)

		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

// Whether the event concerns the watched file and may have changed its
// content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
