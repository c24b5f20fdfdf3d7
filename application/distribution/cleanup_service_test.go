package distribution

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"livephoto-audio/domain/distribution"
)

func TestCleanupService_EnoughSpace(t *testing.T) {
	client := newMockDriveClient()
	client.addFile("1", "2025-01-01_a.m4a", 1000)
	svc := NewCleanupService(client, "folder")

	result, err := svc.EnsureSpaceAvailable(context.Background(), 500, "")
	if err != nil {
		t.Fatalf("EnsureSpaceAvailable() unexpected error: %v", err)
	}
	if len(result.DeletedFiles) != 0 {
		t.Errorf("deleted %v, want nothing", result.DeletedFiles)
	}
}

func TestCleanupService_DeletesOldestFirst(t *testing.T) {
	client := newMockDriveClient()
	client.storageInfo.TotalBytes = 3000
	client.storageInfo.AvailableBytes = 3000
	client.addFile("2", "2025-01-02_b.m4a", 1000)
	client.addFile("1", "2025-01-01_a.m4a", 1000)
	client.addFile("3", "2025-01-03_c.m4a", 500)
	svc := NewCleanupService(client, "folder")

	// 500 available, need 1800: deleting a and b frees 2000
	result, err := svc.EnsureSpaceAvailable(context.Background(), 1800, "")
	if err != nil {
		t.Fatalf("EnsureSpaceAvailable() unexpected error: %v", err)
	}
	if len(result.DeletedFiles) != 2 ||
		result.DeletedFiles[0].Name != "2025-01-01_a.m4a" ||
		result.DeletedFiles[1].Name != "2025-01-02_b.m4a" {
		t.Errorf("deleted %+v, want a then b", result.DeletedFiles)
	}
	if result.FreedBytes != 2000 {
		t.Errorf("FreedBytes = %d, want 2000", result.FreedBytes)
	}
}

func TestCleanupService_NothingLeftToDelete(t *testing.T) {
	client := newMockDriveClient()
	client.storageInfo.AvailableBytes = 10
	svc := NewCleanupService(client, "folder")

	_, err := svc.EnsureSpaceAvailable(context.Background(), 1000, "")
	if !errors.Is(err, distribution.ErrInsufficientStorage) || !strings.Contains(err.Error(), "no audio files to delete") {
		t.Errorf("EnsureSpaceAvailable() error = %v, want %v", err, distribution.ErrInsufficientStorage)
	}
}

func TestCleanupService_ReplacedFileCountsAsFreed(t *testing.T) {
	tests := []struct {
		name      string
		needed    int64
		replacing string
		want      []string
	}{
		{"replacement alone makes room", 1000, "2025-01-01_a.m4a", nil},
		{"replaced file is never deleted", 1800, "2025-01-02_b.m4a", []string{"2025-01-01_a.m4a"}},
		{"without a replacement", 1800, "", []string{"2025-01-01_a.m4a", "2025-01-02_b.m4a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockDriveClient()
			client.storageInfo.TotalBytes = 3000
			client.storageInfo.AvailableBytes = 3000
			client.addFile("1", "2025-01-01_a.m4a", 1000)
			client.addFile("2", "2025-01-02_b.m4a", 1000)
			client.addFile("3", "2025-01-03_c.m4a", 500)
			svc := NewCleanupService(client, "folder")

			if _, err := svc.EnsureSpaceAvailable(context.Background(), tt.needed, tt.replacing); err != nil {
				t.Fatalf("EnsureSpaceAvailable() unexpected error: %v", err)
			}
			if len(client.deleted) != len(tt.want) {
				t.Fatalf("deleted %v, want %v", client.deleted, tt.want)
			}
			for i := range tt.want {
				if client.deleted[i] != tt.want[i] {
					t.Errorf("deleted %v, want %v", client.deleted, tt.want)
				}
			}
		})
	}
}

func TestCleanupService_OrdersByCreationTime(t *testing.T) {
	client := newMockDriveClient()
	client.storageInfo.TotalBytes = 2000
	client.storageInfo.AvailableBytes = 2000
	client.addFile("1", "a.m4a", 1000)
	client.addFile("2", "b.m4a", 1000)
	client.files["a.m4a"].CreatedTime = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	client.files["b.m4a"].CreatedTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewCleanupService(client, "folder")

	result, err := svc.EnsureSpaceAvailable(context.Background(), 500, "")
	if err != nil {
		t.Fatalf("EnsureSpaceAvailable() unexpected error: %v", err)
	}
	if len(result.DeletedFiles) != 1 || result.DeletedFiles[0].Name != "b.m4a" {
		t.Errorf("deleted %+v, want the older b.m4a", result.DeletedFiles)
	}
}
