// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// staged attachments, assistant activity (reasoning segments and tool
// calls), and generation modes.
//
// Types here are plain data with small invariant-preserving methods; the
// stores and state machines that operate on them live in their own
// packages (attachment, history, genmode, activity, composer).
package model
