// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the haven TUI:
// rune- and width-aware string truncation, numeric formatting, and
// atomic file writes used by config and history persistence.
package util
