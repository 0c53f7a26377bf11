package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/capitan"

	"github.com/zoobzio/lens"
)

// Config file signals.
var (
	// Reloaded is emitted when a changed config file loads and validates.
	Reloaded = capitan.NewSignal(
		"lens.config.reloaded",
		"Config file reloaded",
	)

	// Rejected is emitted when a changed config file fails to load or validate.
	Rejected = capitan.NewSignal(
		"lens.config.rejected",
		"Config file rejected",
	)
)

// KeyPath is the config file a signal refers to.
var KeyPath = capitan.NewStringKey("path")

// Watch loads the config at path and returns a channel that emits it, then
// emits it again every time the file is written and still validates. Invalid
// versions are reported through Rejected and skipped. The channel is closed
// when ctx is done.
// A file replaced by rename is followed as well as one written in place.
func Watch(ctx context.Context, path string, lookup LookupFunc) (<-chan *Config, error) {
	initial, err := LoadWith(path, lookup)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config %s: %w", path, err)
	}

	out := make(chan *Config, 1)
	out <- initial

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := LoadWith(path, lookup)
				if err != nil {
					capitan.Emit(ctx, Rejected,
						KeyPath.Field(path),
						lens.KeyError.Field(err.Error()),
					)
					continue
				}
				capitan.Emit(ctx, Reloaded, KeyPath.Field(path))

				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
