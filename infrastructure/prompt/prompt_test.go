package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/infrastructure/ffmpeg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations for testing ---

type mockPrompter struct {
	inputs   []string
	confirms []bool
	err      error
	messages []string
	defaults []string
}

func (m *mockPrompter) Input(message string, defaultValue string) (string, error) {
	m.messages = append(m.messages, message)
	m.defaults = append(m.defaults, defaultValue)
	if m.err != nil {
		return "", m.err
	}
	if len(m.inputs) == 0 {
		return defaultValue, nil
	}
	answer := m.inputs[0]
	m.inputs = m.inputs[1:]
	return answer, nil
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	m.messages = append(m.messages, message)
	if m.err != nil {
		return false, m.err
	}
	if len(m.confirms) == 0 {
		return defaultValue, nil
	}
	answer := m.confirms[0]
	m.confirms = m.confirms[1:]
	return answer, nil
}

func (m *mockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	m.messages = append(m.messages, message)
	if m.err != nil {
		return "", m.err
	}
	return defaultValue, nil
}

type mockProber struct {
	infos map[string]*ffmpeg.ProbeInfo
}

func (m *mockProber) Probe(ctx context.Context, path string) (*ffmpeg.ProbeInfo, error) {
	if info, ok := m.infos[path]; ok {
		return info, nil
	}
	return nil, errors.New("ffprobe failed")
}

type mockDimensions struct {
	w, h int
}

func (m *mockDimensions) Available() bool { return true }

func (m *mockDimensions) Dimensions(path string) (int, int, error) {
	return m.w, m.h, nil
}

type recordingSharer struct {
	requests []distribution.ShareRequest
}

func (r *recordingSharer) Share(ctx context.Context, req distribution.ShareRequest) (distribution.ShareResult, error) {
	r.requests = append(r.requests, req)
	return distribution.ShareResult{URL: "https://example.test/a"}, nil
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	return path
}

// --- Permission tests ---

func TestPermissionProvider_AsksOncePerCapability(t *testing.T) {
	prompter := &mockPrompter{confirms: []bool{true, false}}
	p := NewPermissionProvider(prompter)
	ctx := context.Background()

	granted, err := p.CheckOrRequest(ctx, media.CapabilityCamera)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = p.CheckOrRequest(ctx, media.CapabilityCamera)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = p.CheckOrRequest(ctx, media.CapabilityPhotoLibrary)
	require.NoError(t, err)
	assert.False(t, granted)

	assert.Equal(t, []string{"Allow access to the camera?", "Allow access to your photo library?"}, prompter.messages)
}

func TestPermissionProvider_PresetSkipsPrompt(t *testing.T) {
	prompter := &mockPrompter{}
	p := NewPermissionProvider(prompter, media.CapabilityPhotoLibrary)

	granted, err := p.CheckOrRequest(context.Background(), media.CapabilityPhotoLibrary)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Empty(t, prompter.messages)
}

func TestPermissionProvider_InterruptIsNotRemembered(t *testing.T) {
	prompter := &mockPrompter{err: media.ErrUserCancelled}
	p := NewPermissionProvider(prompter)

	_, err := p.CheckOrRequest(context.Background(), media.CapabilityCamera)
	assert.ErrorIs(t, err, media.ErrUserCancelled)

	prompter.err = nil
	prompter.confirms = []bool{true}
	granted, err := p.CheckOrRequest(context.Background(), media.CapabilityCamera)
	require.NoError(t, err)
	assert.True(t, granted)
}

// --- Sharer tests ---

func TestConfirmingSharer(t *testing.T) {
	req := distribution.ShareRequest{Path: "/a.m4a", MimeType: "audio/mp4", SuggestedName: "a.m4a"}

	t.Run("confirmed", func(t *testing.T) {
		target := &recordingSharer{}
		s := NewConfirmingSharer(&mockPrompter{confirms: []bool{true}}, target, "Google Drive")

		res, err := s.Share(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "https://example.test/a", res.URL)
		assert.Equal(t, []distribution.ShareRequest{req}, target.requests)
	})

	t.Run("declined", func(t *testing.T) {
		target := &recordingSharer{}
		prompter := &mockPrompter{confirms: []bool{false}}
		s := NewConfirmingSharer(prompter, target, "Google Drive")

		_, err := s.Share(context.Background(), req)
		assert.ErrorIs(t, err, media.ErrUserCancelled)
		assert.Empty(t, target.requests)
		assert.Equal(t, []string{"Share a.m4a to Google Drive?"}, prompter.messages)
	})

	t.Run("interrupted", func(t *testing.T) {
		target := &recordingSharer{}
		s := NewConfirmingSharer(&mockPrompter{err: media.ErrUserCancelled}, target, "")

		_, err := s.Share(context.Background(), req)
		assert.ErrorIs(t, err, media.ErrUserCancelled)
		assert.Empty(t, target.requests)
	})
}

// --- Picker tests ---

func TestPicker_PickVideo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clip.mp4")
	created := time.Date(2025, 1, 5, 14, 30, 15, 0, time.UTC)

	prober := &mockProber{infos: map[string]*ffmpeg.ProbeInfo{
		path: {Duration: 5.2, Width: 1920, Height: 1080, HasVideo: true, HasAudio: true, CreationTime: &created},
	}}
	p := NewPicker(&mockPrompter{inputs: []string{path}}, prober)

	raw, err := p.PickImageOrVideo(context.Background(), media.PickOptions{Source: media.SourceGallery, Filter: media.FilterAny})
	require.NoError(t, err)

	assert.Equal(t, path, raw.Path)
	assert.Equal(t, "video/mp4", raw.MimeType)
	assert.Equal(t, "clip.mp4", raw.Filename)
	require.NotNil(t, raw.SizeBytes)
	assert.Equal(t, int64(4), *raw.SizeBytes)
	require.NotNil(t, raw.DurationMs)
	assert.Equal(t, int64(5200), *raw.DurationMs)
	require.NotNil(t, raw.Width)
	assert.Equal(t, 1920, *raw.Width)
	require.NotNil(t, raw.Created)
	assert.Equal(t, created.Unix(), *raw.Created)
}

func TestPicker_PickImageFallsBackToDimensionReader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "IMG_0001.HEIC")

	p := NewPicker(&mockPrompter{inputs: []string{path}}, &mockProber{}, WithDimensionReader(&mockDimensions{w: 3024, h: 4032}))

	raw, err := p.PickImageOrVideo(context.Background(), media.PickOptions{Source: media.SourceCamera, IncludeExif: true})
	require.NoError(t, err)

	assert.Equal(t, "image/heic", raw.MimeType)
	assert.Nil(t, raw.DurationMs)
	require.NotNil(t, raw.Width)
	assert.Equal(t, 3024, *raw.Width)
	assert.Equal(t, 4032, *raw.Height)
	assert.Nil(t, raw.Exif, "no probe, no exif")
}

func TestPicker_EmptyAnswerCancels(t *testing.T) {
	p := NewPicker(&mockPrompter{inputs: []string{"   "}}, &mockProber{})

	_, err := p.PickImageOrVideo(context.Background(), media.PickOptions{Source: media.SourceGallery})
	assert.ErrorIs(t, err, media.ErrUserCancelled)
}

func TestPicker_MissingFile(t *testing.T) {
	p := NewPicker(&mockPrompter{inputs: []string{"/does/not/exist.mp4"}}, &mockProber{})

	_, err := p.PickImageOrVideo(context.Background(), media.PickOptions{Source: media.SourceGallery})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, media.ErrUserCancelled)
}

func TestPicker_FilterRejectsWrongKind(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "photo.jpg")
	p := NewPicker(&mockPrompter{inputs: []string{path}}, &mockProber{})

	_, err := p.PickImageOrVideo(context.Background(), media.PickOptions{Source: media.SourceRecord, Filter: media.FilterVideos})
	assert.ErrorContains(t, err, "is not a video")
}

func TestPicker_PickLivePhoto(t *testing.T) {
	dir := t.TempDir()
	photo := writeFile(t, dir, "IMG_0001.HEIC")
	video := writeFile(t, dir, "IMG_0001.MOV")

	prober := &mockProber{infos: map[string]*ffmpeg.ProbeInfo{
		video: {Duration: 2.8, Width: 1440, Height: 1920, HasVideo: true, HasAudio: true},
	}}
	prompter := &mockPrompter{inputs: []string{photo}}
	p := NewPicker(prompter, prober, WithDimensionReader(&mockDimensions{w: 3024, h: 4032}))

	raw, err := p.PickLivePhoto(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", video}, prompter.defaults, "the sibling video is offered as default")
	assert.Equal(t, photo, raw.PhotoPath)
	assert.Equal(t, video, raw.VideoPath)
	assert.Equal(t, "video/quicktime", raw.VideoMime)
	assert.Equal(t, "IMG_0001", raw.LocalIdentifier)
	assert.Equal(t, 2.8, raw.DurationSeconds)
	assert.Equal(t, 3024, raw.PixelWidth, "still dimensions win over the video's")
	assert.Equal(t, 4032, raw.PixelHeight)
	assert.NotZero(t, raw.Created)

	lp, err := media.FromRawLivePhoto(raw)
	require.NoError(t, err)
	assert.Equal(t, video, lp.Video.Path)
}

func TestPicker_PickLivePhotoWithoutVideo(t *testing.T) {
	dir := t.TempDir()
	photo := writeFile(t, dir, "IMG_0002.JPG")

	p := NewPicker(&mockPrompter{inputs: []string{photo}}, &mockProber{})

	_, err := p.PickLivePhoto(context.Background())
	assert.ErrorIs(t, err, media.ErrIncompleteLivePhoto, "a still without a video is incomplete, not cancelled")
	assert.NotErrorIs(t, err, media.ErrUserCancelled)
}

func TestPicker_PickLivePhotoNoStill(t *testing.T) {
	p := NewPicker(&mockPrompter{inputs: []string{""}}, &mockProber{})

	_, err := p.PickLivePhoto(context.Background())
	assert.ErrorIs(t, err, media.ErrUserCancelled)
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/a.MOV", "video/quicktime"},
		{"/a.mp4", "video/mp4"},
		{"/a.heic", "image/heic"},
		{"/a.jpg", "image/jpeg"},
		{"/a.unknownext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, mimeTypeFor(tt.path))
		})
	}
}
