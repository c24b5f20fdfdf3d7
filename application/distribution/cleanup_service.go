package distribution

import (
	"context"
	"fmt"
	"sort"

	"livephoto-audio/domain/distribution"
)

// CleanupService makes room in the share folder by deleting the audio that
// was shared longest ago
type CleanupService struct {
	driveClient distribution.DriveClient
	folderID    string
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(client distribution.DriveClient, folderID string) *CleanupService {
	return &CleanupService{
		driveClient: client,
		folderID:    folderID,
	}
}

// EnsureSpaceAvailable deletes older shares until an upload of neededBytes
// fits. replacing names the file the upload will replace: it is never
// deleted here and its size counts as freed. The result lists what was
// deleted, even on error.
func (s *CleanupService) EnsureSpaceAvailable(ctx context.Context, neededBytes int64, replacing string) (*distribution.CleanupResult, error) {
	result := &distribution.CleanupResult{}

	storage, err := s.driveClient.GetStorageQuota(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to check storage: %w", err)
	}
	if storage.HasSpaceFor(neededBytes) {
		return result, nil
	}

	files, err := s.driveClient.ListAudioFiles(ctx, s.folderID)
	if err != nil {
		return result, fmt.Errorf("failed to list files: %w", err)
	}

	shortfall := neededBytes - storage.AvailableBytes
	var candidates []distribution.FileInfo
	for _, f := range files {
		if replacing != "" && f.Name == replacing {
			shortfall -= f.Size
			continue
		}
		candidates = append(candidates, f)
	}
	sortOldestFirst(candidates)

	for _, f := range candidates {
		if result.FreedBytes >= shortfall {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.driveClient.DeletePermanently(ctx, f.ID); err != nil {
			return result, fmt.Errorf("failed to delete %s: %w", f.Name, err)
		}
		result.DeletedFiles = append(result.DeletedFiles, distribution.DeletedFile{Name: f.Name, Size: f.Size})
		result.FreedBytes += f.Size
	}

	if result.FreedBytes < shortfall {
		return result, fmt.Errorf("%w: no audio files to delete, need %d more bytes but only %d could be freed",
			distribution.ErrInsufficientStorage, shortfall, result.FreedBytes)
	}
	return result, nil
}

// sortOldestFirst orders by creation time. Names break ties, which keeps
// date-prefixed names in order when Drive reports no time.
func sortOldestFirst(files []distribution.FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].CreatedTime.Equal(files[j].CreatedTime) {
			return files[i].CreatedTime.Before(files[j].CreatedTime)
		}
		return files[i].Name < files[j].Name
	})
}
