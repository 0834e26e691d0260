// Package fswatch turns fsnotify events for a single file into change events.
package fswatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Azhovan/envschema"
	"github.com/fsnotify/fsnotify"
)

// relevantOps are the operations that can change a file's content.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// File watches path and emits a ChangeEvent with the given cause whenever it
// is written, created, renamed or removed. The parent directory is watched so
// that editors replacing the file atomically are still observed.
// The channel is closed when ctx is cancelled or the watcher fails.
func File(ctx context.Context, path, cause string) (<-chan envschema.ChangeEvent, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	events := make(chan envschema.ChangeEvent)

	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !Matches(event, target) {
					continue
				}

				select {
				case events <- envschema.ChangeEvent{At: time.Now(), Cause: cause}:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Transient watcher errors; keep watching
			}
		}
	}()

	return events, nil
}

// Matches reports whether event concerns target (an absolute path) and
// carries an operation that may change its content.
func Matches(event fsnotify.Event, target string) bool {
	if event.Op&relevantOps == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}
