package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/mindcraft/pkg/errors"
	"github.com/matzehuels/mindcraft/pkg/store"
)

// reloadDebounce coalesces the burst of events an editor produces per save.
const reloadDebounce = 200 * time.Millisecond

// WatchPath returns the file backing the served map, or "" when the store is
// not a file store.
func (s *Server) WatchPath() string {
	fs, ok := store.Unwrap(s.store).(*store.FileStore)
	if !ok {
		return ""
	}
	return fs.Path(s.name)
}

// Watch reloads the map whenever its file changes, until ctx is cancelled.
// The parent directory is watched so that atomic rename-into-place saves are
// seen. Stores that are not file stores return UNSUPPORTED.
func (s *Server) Watch(ctx context.Context) error {
	path := s.WatchPath()
	if path == "" {
		return errors.New(errors.ErrCodeUnsupported, "only file stores can be watched")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "create watcher")
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(errors.ErrCodeIOFailure, err, "watch %s", filepath.Dir(path))
	}
	s.logger.Info("watching map file", "path", path)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(reloadDebounce)
			reload = timer.C

		case <-reload:
			reload = nil
			if err := s.Reload(ctx); err != nil {
				// A half-written or invalid file keeps the last good map.
				s.logger.Warn("reload failed", "path", path, "err", errors.UserMessage(err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "err", err)
		}
	}
}
