// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment provides the session-keyed staged attachment store
// and the in-flight upload progress tracker.
package attachment

import (
	"sync"

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// ATTACHMENT STORE
// =============================================================================

// Observer is notified with the session key whenever the staged list for
// that key actually changes. No-op operations never notify, which keeps
// memoized renders stable.
type Observer func(key string)

// Store maps session keys to lists of staged attachments. There is one
// logical writer per key (the UI event loop), but the mutex makes the
// store safe for the upload pipeline goroutines that append results.
type Store struct {
	mu        sync.Mutex
	staged    map[string][]model.Attachment
	observers []Observer
}

// NewStore creates an empty attachment store.
func NewStore() *Store {
	return &Store{
		staged: make(map[string][]model.Attachment),
	}
}

// Subscribe registers an observer for change notifications.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Append concatenates a batch to the staged list for key, preserving
// order. An empty batch is a true no-op: no state change, no
// notification.
func (s *Store) Append(key string, batch []model.Attachment) {
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	s.staged[key] = append(s.staged[key], batch...)
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(key)
	}
}

// RemoveAt removes exactly one element at index, preserving the relative
// order of the rest. An out-of-range index is a true no-op.
func (s *Store) RemoveAt(key string, index int) {
	s.mu.Lock()
	list := s.staged[key]
	if index < 0 || index >= len(list) {
		s.mu.Unlock()
		return
	}
	s.staged[key] = append(list[:index], list[index+1:]...)
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(key)
	}
}

// List returns a copy of the staged attachments for key.
func (s *Store) List(key string) []model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.staged[key]
	if len(list) == 0 {
		return nil
	}
	out := make([]model.Attachment, len(list))
	copy(out, list)
	return out
}

// Count returns the number of staged attachments for key.
func (s *Store) Count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged[key])
}

// Clear drops all staged attachments for key. Clearing an already-empty
// key is a no-op and does not notify.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	list, ok := s.staged[key]
	if !ok || len(list) == 0 {
		delete(s.staged, key)
		s.mu.Unlock()
		return
	}
	delete(s.staged, key)
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(key)
	}
}
