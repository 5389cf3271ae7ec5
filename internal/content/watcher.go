// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content loads the conversation content configuration.
package content

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change
// before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a catalog file into a Store when it changes on disk.
// Invalid edits are logged and the previous catalog stays active.
type Watcher struct {
	path     string
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	// OnReload is called after each successful swap. Optional.
	OnReload func(*Catalog)
}

// NewWatcher creates a watcher for path. The parent directory is watched so
// editors that replace the file by rename are still seen.
func NewWatcher(path string, store *Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		store:    store,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   logger,
	}, nil
}

// Run processes file events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", "error", err)
		}
	}
}

// reload loads the file and swaps it into the store.
func (w *Watcher) reload() {
	cat, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("content reload rejected", "path", w.path, "error", err)
		return
	}
	w.store.Swap(cat)
	w.logger.Info("content reloaded", "path", w.path, "locales", len(cat.Locales), "pages", len(cat.Pages))
	if w.OnReload != nil {
		w.OnReload(cat)
	}
}
