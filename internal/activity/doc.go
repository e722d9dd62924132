// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity merges an assistant turn's reasoning segments and
// tool calls into a single chronologically ordered projection.
//
// The projection is a pure function of its inputs and mutates nothing,
// so it can be rebuilt on every render; the stable sort guarantees that
// recomputing from the same inputs always yields the same order. While a
// turn streams, the projection backs the live activity view; once the
// turn completes it collapses into a one-line summary with counts and
// thinking duration.
package activity
