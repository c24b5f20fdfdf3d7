package distribution

import (
	"context"
	"errors"
	"sort"

	"livephoto-audio/domain/distribution"
)

// --- Mock implementations for testing ---

// mockDriveClient implements distribution.DriveClient for testing
type mockDriveClient struct {
	files       map[string]*distribution.FileInfo // keyed by file name
	storageInfo *distribution.StorageInfo
	uploadErr   error
	findErr     error
	deleted     []string
	uploads     []distribution.UploadRequest
}

func newMockDriveClient() *mockDriveClient {
	return &mockDriveClient{
		files: make(map[string]*distribution.FileInfo),
		storageInfo: &distribution.StorageInfo{
			TotalBytes:     15 * 1024 * 1024 * 1024,
			AvailableBytes: 15 * 1024 * 1024 * 1024,
		},
	}
}

func (m *mockDriveClient) addFile(id, name string, size int64) {
	m.files[name] = &distribution.FileInfo{ID: id, Name: name, MimeType: distribution.MimeTypeM4A, Size: size}
	m.storageInfo.UsedBytes += size
	m.storageInfo.AvailableBytes -= size
}

func (m *mockDriveClient) ListAudioFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	var result []distribution.FileInfo
	for _, f := range m.files {
		if distribution.IsAudioMimeType(f.MimeType) {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, fileName string) (*distribution.FileInfo, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if f, ok := m.files[fileName]; ok {
		return f, nil
	}
	return nil, nil
}

func (m *mockDriveClient) GetStorageQuota(ctx context.Context) (*distribution.StorageInfo, error) {
	info := *m.storageInfo
	return &info, nil
}

func (m *mockDriveClient) UploadAndShare(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, req)
	return &distribution.UploadResult{
		FileID:       "id-" + req.FileName,
		FileName:     req.FileName,
		ShareableURL: "https://drive.google.com/file/d/id-" + req.FileName + "/view?usp=sharing",
	}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	for name, f := range m.files {
		if f.ID == fileID {
			delete(m.files, name)
			m.storageInfo.UsedBytes -= f.Size
			m.storageInfo.AvailableBytes += f.Size
			m.deleted = append(m.deleted, name)
			return nil
		}
	}
	return errors.New("file not found")
}

// mockCopier implements distribution.FileCopier for testing
type mockCopier struct {
	err    error
	copies [][2]string
}

func (m *mockCopier) Copy(ctx context.Context, src, dst string) error {
	if m.err != nil {
		return m.err
	}
	m.copies = append(m.copies, [2]string{src, dst})
	return nil
}

// mockFileChecker implements media.FileChecker for testing
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// mockSharer implements distribution.Sharer for testing
type mockSharer struct {
	err      error
	url      string
	requests []distribution.ShareRequest
}

func (m *mockSharer) Share(ctx context.Context, req distribution.ShareRequest) (distribution.ShareResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return distribution.ShareResult{}, m.err
	}
	return distribution.ShareResult{URL: m.url}, nil
}

// mockLedger implements distribution.ExportLedger for testing
type mockLedger struct {
	err     error
	records []distribution.ExportRecord
}

func (m *mockLedger) Record(ctx context.Context, rec distribution.ExportRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}
