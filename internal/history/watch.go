package history

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch delivers a fresh snapshot of the record list whenever the
// persisted file changes, including changes made by another process.
// This is the reactive view of the history; consumers get the full
// newest-first list on every change. Blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func([]Record)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: persist replaces the file wholesale, and a
	// watch on the file itself would be dropped by Clear.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if err := s.Load(); err != nil {
				s.log.Warn("failed to reload history", "error", err)
				continue
			}
			onChange(s.Items())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("history watch error", "error", err)
		}
	}
}
