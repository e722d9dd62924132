// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genmode owns the composer's generation mode (text or image)
// and the image parameter bag bound to image-mode sessions.
//
// Two rules shape the state machine: image mode silently reverts to text
// the moment it becomes unusable (private mode on, or no free model and
// no personal key), and a conversation flagged as an image thread gets
// auto-switched into image mode exactly once, with manual overrides
// respected afterwards.
package genmode
