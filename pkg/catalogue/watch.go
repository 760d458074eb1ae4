package catalogue

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay batches the burst of events editors emit for one save.
const reloadDelay = 200 * time.Millisecond

// Watch reloads the catalogue whenever its file changes and blocks until ctx
// is done. The parent directory is watched so atomic rename-on-save editors
// keep working. Failed reloads are logged and the previous contents kept.
func (c *Catalogue) Watch(ctx context.Context) error {
	if c.path == "" {
		return errors.New("catalogue: no backing file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	target := filepath.Clean(c.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalogue watcher", zap.Error(err))
		case <-timer.C:
			if err := c.Reload(); err != nil {
				c.logger.Warn("catalogue reload failed", zap.Error(err))
			}
		}
	}
}
