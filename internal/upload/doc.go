// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload is the file staging pipeline behind the composer's
// attachment flow.
//
// Files enter either explicitly (the /attach command, paste) or through
// the inbox watcher, which treats a designated directory as the
// drag-and-drop target for the terminal. Each file is assigned a
// correlation ID (uuid) when staging begins; the progress tracker entry
// and the resulting attachment record share that ID, which is what ties
// an in-flight progress bar to the attachment it becomes. Failed files
// leave no tracker entry and no attachment behind.
package upload
