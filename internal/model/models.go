// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// GENERATION MODE
// =============================================================================

// GenerationMode selects whether the composer produces a text reply or an
// image. Process-wide default is text.
type GenerationMode string

const (
	ModeText  GenerationMode = "text"
	ModeImage GenerationMode = "image"
)

// Valid reports whether the mode is one of the known values.
func (m GenerationMode) Valid() bool {
	return m == ModeText || m == ModeImage
}

// String returns the string representation of the mode.
func (m GenerationMode) String() string {
	return string(m)
}

// ImageParams are the per-session parameters for image generation.
// Their lifecycle is bound to sessions whose mode is image.
type ImageParams struct {
	AspectRatio    string `json:"aspect_ratio"`
	Model          string `json:"model"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

// DefaultImageParams returns the starting parameter bag for image mode.
func DefaultImageParams() ImageParams {
	return ImageParams{
		AspectRatio: "1:1",
	}
}

// =============================================================================
// IMAGE MODEL RECORDS
// =============================================================================

// ModelAccess is the discriminant for image model records. Access is
// resolved once at data-ingestion time so capability checks never have to
// duck-type a record at the call site.
type ModelAccess string

const (
	// AccessFree marks models usable without a personal credential.
	AccessFree ModelAccess = "free"
	// AccessUser marks models that require the user's own key.
	AccessUser ModelAccess = "user"
)

// ImageModel is a model record available for image generation.
type ImageModel struct {
	Access ModelAccess `json:"access"`
	ID     string      `json:"id"`
	Name   string      `json:"name"`
}

// IsFree returns true for free-tier models.
func (m ImageModel) IsFree() bool {
	return m.Access == AccessFree
}

// ResolveImageModels builds tagged records from the configured image
// model at load time. A model paired with a personal key is tagged
// user-access; one usable without a key is tagged free.
func ResolveImageModels(modelID string, hasPersonalKey bool) []ImageModel {
	if modelID == "" {
		return nil
	}
	access := AccessFree
	if hasPersonalKey {
		access = AccessUser
	}
	return []ImageModel{{Access: access, ID: modelID, Name: modelID}}
}

// CanGenerateImages reports whether image generation is usable given the
// available model records and whether the user holds a personal key.
// Either a personal key or at least one free-tier model suffices.
func CanGenerateImages(models []ImageModel, hasPersonalKey bool) bool {
	if hasPersonalKey {
		return true
	}
	for _, m := range models {
		if m.IsFree() {
			return true
		}
	}
	return false
}
