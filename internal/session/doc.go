// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the manager that owns one input session per
// conversation key.
//
// An input session aggregates the composer settings bound to a single
// conversation (persona, temperature, reasoning config, generation mode,
// image params); staged attachments and input history are held in
// session-keyed stores owned by the same manager. The manager is passed
// by handle to the components that need it, which keeps the "one session
// per key" invariant visible instead of hiding it behind a global.
package session
