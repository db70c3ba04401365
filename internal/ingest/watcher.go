package ingest

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mars-labs/mars-cli/internal/logger"
)

// Watcher auto-ingests supported files dropped into a directory.
type Watcher struct {
	service   *Service
	sessionID string
	watcher   *fsnotify.Watcher
}

// NewWatcher creates a watcher feeding the given session.
func NewWatcher(service *Service, sessionID string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		service:   service,
		sessionID: sessionID,
		watcher:   fw,
	}, nil
}

// Watch ingests supported files created or modified under dir until the
// context is cancelled. Per-file failures are logged, not fatal: a bad
// file must not stop the watch loop.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	logger.Info("Watching %s for session %s", dir, w.sessionID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !Supported(filepath.Base(event.Name)) {
				continue
			}
			n, err := w.service.IngestFile(ctx, event.Name, w.sessionID)
			if err != nil {
				logger.Warn("Ingest %s failed: %v", event.Name, err)
				continue
			}
			logger.Info("Ingested %s: %d chunks", filepath.Base(event.Name), n)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
