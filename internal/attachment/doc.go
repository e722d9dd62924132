// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment holds the two small stores behind the composer's
// attachment surface: a session-keyed staged attachment list and a
// correlation-ID-keyed upload progress tracker.
//
// Both stores treat invalid operations (empty append, out-of-range
// remove, unknown upload ID) as silent no-ops that never notify
// observers, so downstream renders only re-run on real changes.
package attachment
