// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads haven's TOML configuration.
//
// Precedence, lowest to highest: built-in defaults, ~/.haven/config.toml,
// HAVEN_* environment variables. Validation runs after all three layers
// so a bad override fails loudly at startup instead of misbehaving
// later.
package config
