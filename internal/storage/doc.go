// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations to a single SQLite database.
//
// Saves are wholesale: the conversation row is replaced and message,
// reasoning, tool-call, and attachment rows cascade, so a save is
// always the exact state handed in. Child tables carry a seq column and
// loads order by it, which keeps activity ordering stable across a
// round trip. Private conversations never touch the database.
package storage
