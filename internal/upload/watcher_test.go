// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherStagesDroppedFile(t *testing.T) {
	inbox := filepath.Join(t.TempDir(), "inbox")
	got := make(chan []string, 1)

	w, err := NewWatcher(inbox, func(paths []string) { got <- paths })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	dropped := filepath.Join(inbox, "dropped.txt")
	if err := os.WriteFile(dropped, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-got:
		if len(paths) != 1 || paths[0] != dropped {
			t.Errorf("paths = %v, want [%s]", paths, dropped)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the dropped file")
	}
}

func TestWatcherIgnoresHiddenFiles(t *testing.T) {
	inbox := filepath.Join(t.TempDir(), "inbox")
	got := make(chan []string, 2)

	w, err := NewWatcher(inbox, func(paths []string) { got <- paths })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(inbox, ".partial"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-got:
		t.Errorf("hidden file should be ignored, got %v", paths)
	case <-time.After(time.Second):
	}
}
