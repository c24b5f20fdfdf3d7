package distribution

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"livephoto-audio/domain/distribution"
	"livephoto-audio/infrastructure/filesystem"
)

// DriveSharer shares artifacts by uploading them to a Google Drive folder
// with "anyone with the link" access. It implements distribution.Sharer.
type DriveSharer struct {
	driveClient distribution.DriveClient
	cleanup     *CleanupService
	folderID    string
	output      io.Writer
}

// NewDriveSharer creates a new Drive sharer. Progress lines go to output.
func NewDriveSharer(client distribution.DriveClient, folderID string, output io.Writer) *DriveSharer {
	if output == nil {
		output = io.Discard
	}
	return &DriveSharer{
		driveClient: client,
		cleanup:     NewCleanupService(client, folderID),
		folderID:    folderID,
		output:      output,
	}
}

// Share uploads req.Path under req.SuggestedName, replacing a file of the same
// name, and returns the shareable link
func (s *DriveSharer) Share(ctx context.Context, req distribution.ShareRequest) (distribution.ShareResult, error) {
	localPath := filesystem.LocalPath(req.Path)
	info, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		return distribution.ShareResult{}, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return distribution.ShareResult{}, fmt.Errorf("failed to stat %s: %w", req.Path, err)
	}

	fileName := req.SuggestedName
	if fileName == "" {
		fileName = filepath.Base(localPath)
	}

	cleaned, err := s.cleanup.EnsureSpaceAvailable(ctx, info.Size(), fileName)
	for _, f := range cleaned.DeletedFiles {
		fmt.Fprintf(s.output, "      Deleted %s (%.1f MB) to free space\n", f.Name, float64(f.Size)/1024/1024)
	}
	if err != nil {
		return distribution.ShareResult{}, fmt.Errorf("failed to free storage: %w", err)
	}

	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return distribution.ShareResult{}, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "      Replacing existing %s (%.1f MB)\n", existing.Name, float64(existing.Size)/1024/1024)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return distribution.ShareResult{}, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = distribution.MimeTypeForFormat(filepath.Ext(fileName))
	}

	result, err := s.driveClient.UploadAndShare(ctx, distribution.UploadRequest{
		LocalPath: localPath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  mimeType,
	})
	if err != nil {
		return distribution.ShareResult{}, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	fmt.Fprintf(s.output, "      Shared %s: %s\n", result.FileName, result.ShareableURL)
	return distribution.ShareResult{URL: result.ShareableURL}, nil
}

// Ensure DriveSharer implements distribution.Sharer
var _ distribution.Sharer = (*DriveSharer)(nil)
