package internal

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce merges bursts of writes to one file into a single change.
const watchDebounce = 100 * time.Millisecond

// Watch calls onChange for every file under dirs that accept admits,
// whenever it is written or created, until ctx is done. Calls for
// different files may run concurrently.
func Watch(
	ctx context.Context,
	logger *zap.Logger,
	dirs []string,
	accept func(path string) bool,
	onChange func(path string),
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	logger.Info("watching for changes", zap.Strings("dirs", dirs))

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !accept(event.Name) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Reset(watchDebounce)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(watchDebounce, func() { onChange(name) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
