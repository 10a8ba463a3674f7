package model

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates cached catalogs whenever a model file in the registry
// directory is written, replaced or removed. It blocks until ctx is done.
// onChange, when set, is called with the file name after invalidation.
func (r *Registry) Watch(ctx context.Context, onChange func(file string)) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(r.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isModelFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			r.Invalidate(event.Name)
			r.logger.Info("model changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if onChange != nil {
				onChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}
