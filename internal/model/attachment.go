// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// AttachmentType distinguishes image attachments from generic files.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

// Attachment is a file or image staged into the draft but not yet part of
// a sent message. Ownership transfers to the sent message on submit.
type Attachment struct {
	// Identity
	ID   string         `json:"id"`
	Type AttachmentType `json:"type"`

	// Location: either a URL or a storage identifier, depending on how
	// the upload pipeline stored the bytes.
	URL       string `json:"url,omitempty"`
	StorageID string `json:"storage_id,omitempty"`

	// File metadata
	Name string `json:"name"`
	Size int64  `json:"size"`

	// Set when the attachment is an image produced by a generation run
	// rather than a user upload.
	Generated *GeneratedImageMeta `json:"generated,omitempty"`
}

// GeneratedImageMeta describes the provenance of a generated image.
type GeneratedImageMeta struct {
	Source string `json:"source"`
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// IsImage returns true for image attachments.
func (a Attachment) IsImage() bool {
	return a.Type == AttachmentImage
}

// =============================================================================
// PENDING UPLOAD
// =============================================================================

// UploadStatus is the lifecycle state of an in-flight upload.
type UploadStatus string

const (
	UploadRunning  UploadStatus = "running"
	UploadComplete UploadStatus = "complete"
	UploadFailed   UploadStatus = "failed"
)

// PendingUpload tracks an in-flight upload. It is ephemeral: created when
// an upload begins and removed on completion or failure.
//
// Uploads are keyed by a client-generated correlation ID rather than by
// filename, so two files with the same name never collide.
type PendingUpload struct {
	ID       string       `json:"id"`
	FileName string       `json:"file_name"`
	Progress int          `json:"progress"` // 0-100
	Status   UploadStatus `json:"status"`
}
