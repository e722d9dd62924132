// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles is haven's visual styling system.
//
// Colors are lipgloss AdaptiveColor pairs so the same palette works on
// light and dark terminals; the Theme bundles every style the views
// use, built once at startup from termenv capability detection.
package styles
