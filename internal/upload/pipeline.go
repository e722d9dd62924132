// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload stages local files into the attachment store, tracking
// per-file progress under client-generated correlation IDs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/haven-tui/internal/attachment"
	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxFileSize caps individual staged files at 25MB.
const MaxFileSize = 25 * 1024 * 1024

// copyChunkSize is the unit of progress reporting during staging.
const copyChunkSize = 256 * 1024

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

var (
	// ErrFileTooLarge is returned for files above MaxFileSize.
	ErrFileTooLarge = errors.New("upload: file exceeds size limit")

	// ErrNotRegular is returned for directories, sockets, and other
	// non-regular files.
	ErrNotRegular = errors.New("upload: not a regular file")
)

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline copies local files into a staging directory and appends the
// result to the attachment store. Each file gets a fresh correlation ID
// at the moment staging begins; the tracker entry, the staged filename,
// and the final attachment record all carry that ID, so nothing ever
// matches uploads to attachments by filename.
type Pipeline struct {
	tracker  *attachment.Tracker
	store    *attachment.Store
	stageDir string
}

// NewPipeline creates a pipeline staging files into stageDir.
func NewPipeline(tracker *attachment.Tracker, store *attachment.Store, stageDir string) *Pipeline {
	return &Pipeline{
		tracker:  tracker,
		store:    store,
		stageDir: stageDir,
	}
}

// Tracker returns the progress tracker for UI rendering.
func (p *Pipeline) Tracker() *attachment.Tracker {
	return p.tracker
}

// Process stages each path and appends the successful ones to the
// attachment store under key. The first failure aborts the batch and is
// returned; files already staged stay staged.
func (p *Pipeline) Process(ctx context.Context, key string, paths []string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.stageOne(ctx, key, path); err != nil {
			return fmt.Errorf("staging %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (p *Pipeline) stageOne(ctx context.Context, key, path string) error {
	id := uuid.NewString()
	name := filepath.Base(path)
	p.tracker.Begin(id, name)

	att, err := p.copyIn(ctx, id, name, path)
	if err != nil {
		p.tracker.Fail(id)
		return err
	}

	p.tracker.Complete(id)
	p.store.Append(key, []model.Attachment{att})
	return nil
}

func (p *Pipeline) copyIn(ctx context.Context, id, name, path string) (model.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Attachment{}, err
	}
	if !info.Mode().IsRegular() {
		return model.Attachment{}, ErrNotRegular
	}
	if info.Size() > MaxFileSize {
		return model.Attachment{}, ErrFileTooLarge
	}

	src, err := os.Open(path)
	if err != nil {
		return model.Attachment{}, err
	}
	defer src.Close()

	if err := os.MkdirAll(p.stageDir, 0o755); err != nil {
		return model.Attachment{}, err
	}

	// Staged under the correlation ID, never the original name.
	dstPath := filepath.Join(p.stageDir, id+filepath.Ext(name))
	dst, err := os.Create(dstPath)
	if err != nil {
		return model.Attachment{}, err
	}
	defer dst.Close()

	var copied int64
	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			os.Remove(dstPath)
			return model.Attachment{}, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				os.Remove(dstPath)
				return model.Attachment{}, err
			}
			copied += int64(n)
			p.tracker.SetProgress(id, progressPercent(copied, info.Size()))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			os.Remove(dstPath)
			return model.Attachment{}, readErr
		}
	}

	return model.Attachment{
		ID:   id,
		Type: TypeForName(name),
		URL:  dstPath,
		Name: name,
		Size: copied,
	}, nil
}

func progressPercent(copied, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(copied * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// TypeForName classifies a filename as image or generic file by
// extension.
func TypeForName(name string) model.AttachmentType {
	if imageExtensions[strings.ToLower(filepath.Ext(name))] {
		return model.AttachmentImage
	}
	return model.AttachmentFile
}
