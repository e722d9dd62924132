// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable view pieces of the haven
// TUI: the activity stream view, the staged attachment strip, markdown
// and code block rendering. Components hold no application state; they
// take the data to draw and a theme, and return strings.
package components
