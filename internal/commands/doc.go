// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements haven's slash command system: a
// quote-aware parser, a registry of built-in commands with aliases, and
// handlers that talk to the rest of the application through Bubble Tea
// messages. Handlers touching the database run inside the returned
// tea.Cmd so the update loop never blocks on I/O.
package commands
