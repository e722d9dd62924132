// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the watcher waits after a create event before
// staging, so files still being written land whole.
const settleDelay = 400 * time.Millisecond

// IngestFunc receives newly arrived inbox paths. Wired to the
// composer's file ingestion, which applies the send-disabled gate.
type IngestFunc func(paths []string)

// Watcher stages files dropped into a designated inbox directory, the
// terminal counterpart of drag-and-drop onto a compose box.
type Watcher struct {
	dir    string
	ingest IngestFunc
	fw     *fsnotify.Watcher
}

// NewWatcher creates a watcher for dir, creating the directory if
// needed.
func NewWatcher(dir string, ingest IngestFunc) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, ingest: ingest, fw: fw}, nil
}

// Dir returns the watched inbox directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run processes events until ctx is done. Blocking; run in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			path := event.Name
			go func() {
				select {
				case <-ctx.Done():
					return
				case <-time.After(settleDelay):
				}
				if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
					return
				}
				w.ingest([]string{path})
			}()
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal; the inbox keeps working for
			// events that do arrive.
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
