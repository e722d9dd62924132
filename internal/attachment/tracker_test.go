// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attachment

import (
	"testing"

	"github.com/jeranaias/haven-tui/internal/model"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	tr.Begin("u1", "photo.png")

	p, ok := tr.Get("u1")
	if !ok {
		t.Fatal("upload should exist after Begin")
	}
	if p.Progress != 0 || p.Status != model.UploadRunning {
		t.Errorf("initial state = %+v", p)
	}

	tr.SetProgress("u1", 40)
	p, _ = tr.Get("u1")
	if p.Progress != 40 {
		t.Errorf("Progress = %d, want 40", p.Progress)
	}

	tr.Complete("u1")
	if _, ok := tr.Get("u1"); ok {
		t.Error("upload should be removed after Complete")
	}
}

func TestTrackerIgnoresInvalidProgress(t *testing.T) {
	tr := NewTracker()
	tr.Begin("u1", "a.txt")

	tr.SetProgress("u1", -5)
	tr.SetProgress("u1", 101)
	tr.SetProgress("missing", 50)

	p, _ := tr.Get("u1")
	if p.Progress != 0 {
		t.Errorf("Progress = %d, want 0", p.Progress)
	}
}

func TestTrackerSameFilenameDoesNotCollide(t *testing.T) {
	// Two files with the same name must track independently because
	// uploads are keyed by correlation ID, not filename.
	tr := NewTracker()
	tr.Begin("u1", "notes.txt")
	tr.Begin("u2", "notes.txt")

	tr.SetProgress("u1", 80)
	tr.Fail("u2")

	p, ok := tr.Get("u1")
	if !ok || p.Progress != 80 {
		t.Errorf("u1 = %+v,%v, want progress 80", p, ok)
	}
	if _, ok := tr.Get("u2"); ok {
		t.Error("u2 should be removed after Fail")
	}
}

func TestSnapshotDeterministicOrder(t *testing.T) {
	tr := NewTracker()
	tr.Begin("u2", "b.txt")
	tr.Begin("u1", "a.txt")
	tr.Begin("u3", "a.txt")

	first := tr.Snapshot()
	second := tr.Snapshot()

	if len(first) != 3 {
		t.Fatalf("len = %d, want 3", len(first))
	}
	if first[0].FileName != "a.txt" || first[0].ID != "u1" {
		t.Errorf("snapshot[0] = %+v, want a.txt/u1", first[0])
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Error("repeated snapshots must have identical order")
		}
	}
}
