package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher re-triggers processing when files under a project root change.
// Events are debounced so editor save bursts collapse into one callback.
type Watcher struct {
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher creates a watcher with the given debounce window.
func NewWatcher(debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		debounce: debounce,
		logger:   logger.With().Str("component", "watcher").Logger(),
	}
}

// Watch blocks until ctx is done, invoking onChange with the batch of
// changed paths after each quiet period. Directories created while
// watching are added to the watch set.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func(paths []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, root); err != nil {
		return err
	}
	w.logger.Info().Str("root", root).Msg("watching for changes")

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories need their own watches.
				if err := w.addTree(fw, event.Name); err != nil {
					w.logger.Debug().Err(err).Str("path", event.Name).Msg("not a watchable directory")
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[event.Name] = true
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")

		case <-fire:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]bool)
			fire = nil
			w.logger.Info().Int("changed", len(paths)).Msg("changes detected")
			onChange(paths)
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
