package viewer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/ggldnl/hexviz/utils"
)

// DefaultWatchDebounce coalesces the burst of events an editor produces on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// WatchDescription reloads the description file whenever it is written, until ctx is
// done or the session is closed. The parent directory is watched so that editors which
// save by renaming a temporary file are followed.
func (s *Session) WatchDescription(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "cannot watch %q", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	guard := utils.NewGuard(func() {
		//nolint:errcheck
		watcher.Close()
	})
	defer guard.OnFail()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "cannot watch %q", path)
	}
	debounced := debounce.New(s.watchDebounce)
	s.logger.Infow("watching description", "path", abs)

	guard.Success()
	s.workers.AddWorkers(func(workerCtx context.Context) {
		defer func() {
			//nolint:errcheck
			watcher.Close()
		}()
		reloadCtx, cancel := context.WithCancel(workerCtx)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-workerCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounced(func() {
					if reloadCtx.Err() != nil {
						return
					}
					s.logger.Infow("description changed, reloading", "path", abs)
					if err := s.LoadDescriptionFile(reloadCtx, abs); err != nil {
						s.logger.Warnw("reload failed", "path", abs, "error", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warnw("description watcher error", "path", abs, "error", err)
			}
		}
	})
	return nil
}
