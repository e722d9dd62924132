// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the streaming HTTP client for the haven
// chat API.
//
// The wire protocol is newline-delimited JSON: each line carries a
// content delta, an optional reasoning ("thinking") delta, and any tool
// invocations, with the final line flagged done and carrying token
// statistics. Session keeps the per-thread transcript so every request
// includes full context.
package backend
