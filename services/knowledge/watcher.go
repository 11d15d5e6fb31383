// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reloads the store when the knowledge-base file changes on
// disk (e.g. a knowledge engineer editing rules.yaml directly).
//
// A reload that fails validation is discarded: the store keeps serving
// the last good rule set.
type FileWatcher struct {
	path    string
	store   *Store
	watcher *fsnotify.Watcher
}

// NewFileWatcher creates a watcher for the given knowledge-base file.
func NewFileWatcher(path string, store *Store) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{path: path, store: store, watcher: watcher}, nil
}

// Start begins watching for file changes. Blocks until the context is
// cancelled; run it in a goroutine.
func (w *FileWatcher) Start(ctx context.Context) {
	if err := w.watcher.Add(w.path); err != nil {
		slog.Warn("failed to watch the knowledge base file", "path", w.path, "error", err)
		return
	}
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fresh, err := LoadFile(w.path)
			if err != nil {
				slog.Error("knowledge base reload rejected, keeping previous rules",
					"path", w.path, "error", err)
				continue
			}
			w.store.Replace(fresh)
			slog.Info("knowledge base reloaded", "path", w.path,
				"rules", len(fresh.Snapshot()))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("knowledge base watcher error", "error", err)
		}
	}
}
