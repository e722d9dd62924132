// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history implements shell-style input history for the composer.
//
// Each conversation key owns an independent stack of previously submitted
// texts plus a browsing cursor. The cursor model mirrors readline: "at
// bottom" means the live draft, Prev walks toward the oldest entry, Next
// walks back, and navigating past either end reports false so the caller
// can pass the keypress through instead of swallowing it.
package history
