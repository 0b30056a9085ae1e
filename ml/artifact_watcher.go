package ml

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports changes to loaded artifact files. Loaded models are
// never swapped; a change only means the process must be restarted to see it.
type ArtifactWatcher struct {
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	paths   map[string]string // absolute path -> model name

	// OnChange, when set, is called for every relevant event after logging.
	OnChange func(model string, op fsnotify.Op)
}

// NewArtifactWatcher watches the parent directory of every path so that
// editors and copy tools that replace files are still seen.
func NewArtifactWatcher(logger *zap.Logger, paths map[string]string) (*ArtifactWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	aw := &ArtifactWatcher{
		watcher: watcher,
		logger:  logger,
		paths:   make(map[string]string, len(paths)),
	}
	dirs := make(map[string]bool)
	for model, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		aw.paths[abs] = model
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return aw, nil
}

// Run blocks until ctx is cancelled or the watcher is closed.
func (aw *ArtifactWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return nil
			}
			aw.handle(event)
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return nil
			}
			aw.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}

func (aw *ArtifactWatcher) Close() error {
	return aw.watcher.Close()
}

func (aw *ArtifactWatcher) handle(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	model, ok := aw.paths[abs]
	if !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	aw.logger.Warn("model artifact changed on disk, restart to load it",
		zap.String("model", model),
		zap.String("path", abs),
		zap.String("op", event.Op.String()))
	if aw.OnChange != nil {
		aw.OnChange(model, event.Op)
	}
}
