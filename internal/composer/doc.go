// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer is the chat input orchestrator. It owns the draft
// text buffer and the active quote, sequences submission, funnels file
// drops into the upload pipeline, bridges the input box to the keyed
// history stacks, and runs the speech-to-text capture lifecycle.
//
// Everything network-bound is injected: submit, submit-as-new, file
// processing, and transcription are collaborator functions supplied by
// the caller. Submission is fire-and-forget with a synchronous local
// reset; the draft, staged attachments, and quote clear as soon as the
// call is issued rather than after the network resolves. That ordering
// is a product decision, not an accident of timing.
package composer
