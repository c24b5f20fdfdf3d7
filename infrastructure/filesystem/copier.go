package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"livephoto-audio/domain/distribution"
)

// Copier implements distribution.FileCopier. The copy is written to a temp
// file next to the destination and renamed into place, so a failed copy
// never leaves a truncated file under the final name.
type Copier struct{}

// NewCopier creates a new filesystem copier
func NewCopier() *Copier {
	return &Copier{}
}

// Copy copies src to dst, creating dst's directory if needed
func (c *Copier) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(LocalPath(src))
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	keep := false
	defer func() {
		_ = tmp.Close()
		if !keep {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to move copy into place: %w", err)
	}
	keep = true
	return nil
}

// Ensure Copier implements distribution.FileCopier
var _ distribution.FileCopier = (*Copier)(nil)
