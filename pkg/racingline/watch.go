package racingline

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/psuracing/racingline-service-go/log"
)

const watchedOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watch invalidates p whenever the document at path changes.
// The parent directory is watched since editors usually replace files.
// The watcher stops when ctx is done.
func Watch(ctx context.Context, p Provider, path string, l *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return err
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				l.Debug("track watcher stopped")
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&watchedOps == 0 {
					continue
				}
				l.Info("track file changed, invalidating",
					log.String("path", ev.Name),
					log.String("op", ev.Op.String()))
				p.Invalidate(ctx)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.Warn("track watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
