// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment provides the session-keyed staged attachment store
// and the in-flight upload progress tracker.
package attachment

import (
	"sort"
	"sync"

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// UPLOAD PROGRESS TRACKER
// =============================================================================

// Tracker maps upload correlation IDs to pending upload state. Entries
// are created when an upload begins and removed on completion or failure;
// the attachment renderer reads snapshots for its progress bars.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]model.PendingUpload
}

// NewTracker creates an empty upload tracker.
func NewTracker() *Tracker {
	return &Tracker{
		pending: make(map[string]model.PendingUpload),
	}
}

// Begin registers a new upload at 0% progress.
func (t *Tracker) Begin(id, fileName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[id] = model.PendingUpload{
		ID:       id,
		FileName: fileName,
		Progress: 0,
		Status:   model.UploadRunning,
	}
}

// SetProgress updates progress for an upload. Unknown IDs and values
// outside 0-100 are ignored.
func (t *Tracker) SetProgress(id string, progress int) {
	if progress < 0 || progress > 100 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[id]
	if !ok {
		return
	}
	p.Progress = progress
	t.pending[id] = p
}

// Complete removes a finished upload from the tracker.
func (t *Tracker) Complete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// Fail removes a failed upload from the tracker. Failure surfacing is
// the upload pipeline's concern, not the tracker's.
func (t *Tracker) Fail(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// Get returns the pending upload for id, if present.
func (t *Tracker) Get(id string) (model.PendingUpload, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[id]
	return p, ok
}

// Snapshot returns all pending uploads ordered by filename then ID, so
// repeated renders of the same state produce identical output.
func (t *Tracker) Snapshot() []model.PendingUpload {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) == 0 {
		return nil
	}
	out := make([]model.PendingUpload, 0, len(t.pending))
	for _, p := range t.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileName != out[j].FileName {
			return out[i].FileName < out[j].FileName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of in-flight uploads.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
