package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

// WatchFile calls onChange each time the file at the path is written,
// created or replaced, until the context is done. Moving or removing the file
// does not call onChange. The file's directory is
// watched so that editors that replace the file are handled. It blocks until
// the context is done.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	if onChange == nil {
		return errors.New("must specify a change handler")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "getting absolute path for '%s'", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer func() {
		grip.Warning(message.WrapError(w.Close(), message.Fields{
			"message": "could not close file watcher",
			"path":    abs,
		}))
	}()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching directory of '%s'", abs)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !shouldReload(ev, abs) {
				continue
			}
			grip.Debug(message.Fields{
				"message": "watched file changed",
				"path":    abs,
				"op":      ev.Op.String(),
			})
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			grip.Warning(message.WrapError(err, message.Fields{
				"message": "file watcher error",
				"path":    abs,
			}))
		}
	}
}

// shouldReload returns whether or not the event means that the file at the
// path has new contents. A rename event names the old path, so it is ignored;
// the file that replaces it produces a create event.
func shouldReload(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}
