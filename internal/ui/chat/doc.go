// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the haven TUI.

The chat package implements the full-screen conversation interface on
the Bubble Tea framework, tying the input orchestration core to the
terminal.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model. It owns the
conversation, the session manager, the composer, the mode selector, and
the upload pipeline, and it relays events from collaborator goroutines
into the update loop through an internal channel drained by a listen
command.

## Update Loop (update.go)

Message handling: submission (including send-as-new), streamed token /
reasoning / tool-call events, history navigation with caret-gated
fall-through, dictation, slash command outcomes, private mode, and
conversation load/save.

## View Rendering (view.go)

Header, the message viewport (markdown bubbles plus activity blocks),
the staged-attachment strip with upload progress, the quote banner, the
input line, and the status bar.

## Streaming Optimization (streaming.go, viewport_optimizer.go)

StreamingBuffer batches tokens so the viewport redraws at a capped
frame rate instead of once per token; ViewportOptimizer hashes rendered
content to skip redundant viewport updates.

## Backend Boundary (messages.go)

Sender is the injected send function: the view never talks to the
network itself, it hands composed content to a Sender and consumes the
stream events the Sender emits.
*/
package chat
