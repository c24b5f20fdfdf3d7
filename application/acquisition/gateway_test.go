package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"livephoto-audio/domain/media"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations for testing ---

type mockPermissions struct {
	granted bool
	err     error
	asked   []media.Capability
}

func (m *mockPermissions) CheckOrRequest(ctx context.Context, capability media.Capability) (bool, error) {
	m.asked = append(m.asked, capability)
	return m.granted, m.err
}

type mockPicker struct {
	pick      media.RawPick
	pickErr   error
	live      media.RawLivePhoto
	liveErr   error
	pickCalls []media.PickOptions
	liveCalls int
}

func (m *mockPicker) PickImageOrVideo(ctx context.Context, opts media.PickOptions) (media.RawPick, error) {
	m.pickCalls = append(m.pickCalls, opts)
	return m.pick, m.pickErr
}

func (m *mockPicker) PickLivePhoto(ctx context.Context) (media.RawLivePhoto, error) {
	m.liveCalls++
	return m.live, m.liveErr
}

func (m *mockPicker) calls() int {
	return len(m.pickCalls) + m.liveCalls
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestGateway(perm *mockPermissions, picker *mockPicker, opts ...GatewayOption) *Gateway {
	opts = append([]GatewayOption{WithLogger(quietLogger())}, opts...)
	return NewGateway(perm, picker, opts...)
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

// --- Tests ---

func TestGateway_LivePhotoUnsupported(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{}
	g := newTestGateway(perm, picker, WithLivePhotoSupport(false))

	entity, err := g.Acquire(context.Background(), media.SourceLivePhoto)

	assert.Nil(t, entity)
	assert.ErrorIs(t, err, media.ErrUnsupportedPlatform)
	assert.Zero(t, picker.calls(), "picker must not be invoked")
	assert.Empty(t, perm.asked, "no permission is requested for an unsupported feature")
}

func TestGateway_PermissionDenied(t *testing.T) {
	tests := []struct {
		source media.Source
		want   media.Capability
	}{
		{media.SourceCamera, media.CapabilityCamera},
		{media.SourceRecord, media.CapabilityCamera},
		{media.SourceGallery, media.CapabilityPhotoLibrary},
		{media.SourceLivePhoto, media.CapabilityPhotoLibrary},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			perm := &mockPermissions{granted: false}
			picker := &mockPicker{}
			g := newTestGateway(perm, picker, WithLivePhotoSupport(true))

			entity, err := g.Acquire(context.Background(), tt.source)

			assert.Nil(t, entity)
			assert.ErrorIs(t, err, media.ErrPermissionDenied)
			assert.Equal(t, []media.Capability{tt.want}, perm.asked)
			assert.Zero(t, picker.calls())
		})
	}
}

func TestGateway_PermissionProviderError(t *testing.T) {
	perm := &mockPermissions{err: errors.New("dialog unavailable")}
	picker := &mockPicker{}
	g := newTestGateway(perm, picker)

	entity, err := g.Acquire(context.Background(), media.SourceGallery)

	assert.Nil(t, entity)
	assert.ErrorIs(t, err, media.ErrPermissionDenied)
	assert.Zero(t, picker.calls())
}

func TestGateway_CancelIsNotAnError(t *testing.T) {
	tests := []struct {
		name   string
		source media.Source
		picker *mockPicker
		perm   *mockPermissions
	}{
		{"picker cancelled", media.SourceGallery, &mockPicker{pickErr: media.ErrUserCancelled}, &mockPermissions{granted: true}},
		{"live photo picker cancelled", media.SourceLivePhoto, &mockPicker{liveErr: media.ErrUserCancelled}, &mockPermissions{granted: true}},
		{"wrapped cancel", media.SourceCamera, &mockPicker{pickErr: errors.Join(errors.New("closed"), media.ErrUserCancelled)}, &mockPermissions{granted: true}},
		{"permission prompt cancelled", media.SourceGallery, &mockPicker{}, &mockPermissions{err: media.ErrUserCancelled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(tt.perm, tt.picker, WithLivePhotoSupport(true))

			entity, err := g.Acquire(context.Background(), tt.source)

			assert.NoError(t, err)
			assert.Nil(t, entity)
		})
	}
}

func TestGateway_AcquireVideo(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{pick: media.RawPick{
		Path:       "file:///a.mp4",
		MimeType:   "video/mp4",
		SizeBytes:  int64p(2048),
		Width:      intp(1920),
		Height:     intp(1080),
		DurationMs: int64p(5200),
		Created:    int64p(1735372800),
	}}
	g := newTestGateway(perm, picker)

	entity, err := g.Acquire(context.Background(), media.SourceGallery)
	require.NoError(t, err)

	v, ok := entity.(*media.Video)
	require.True(t, ok, "expected *media.Video, got %T", entity)
	assert.Equal(t, "file:///a.mp4", v.Path)
	require.NotNil(t, v.Duration)
	assert.Equal(t, int64(5200), v.Duration.Milliseconds())
	require.NotNil(t, v.Dimensions)
	assert.Equal(t, 1920, v.Dimensions.Width)
	assert.Nil(t, v.Filename, "unreported fields stay absent")

	require.Len(t, picker.pickCalls, 1)
	assert.Equal(t, media.SourceGallery, picker.pickCalls[0].Source)
	assert.Equal(t, media.FilterAny, picker.pickCalls[0].Filter)
}

func TestGateway_AcquireImageWithoutMime(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{pick: media.RawPick{Path: "/photos/a.heic", Exif: map[string]any{"Make": "Apple"}}}
	g := newTestGateway(perm, picker, WithPickOptions(media.PickOptions{Filter: media.FilterImages, IncludeExif: true}))

	entity, err := g.Acquire(context.Background(), media.SourceCamera)
	require.NoError(t, err)

	img, ok := entity.(*media.Image)
	require.True(t, ok, "expected *media.Image, got %T", entity)
	assert.Nil(t, img.MimeType)
	assert.Equal(t, "Apple", img.Exif["Make"])

	require.Len(t, picker.pickCalls, 1)
	assert.Equal(t, media.SourceCamera, picker.pickCalls[0].Source)
	assert.Equal(t, media.FilterImages, picker.pickCalls[0].Filter)
	assert.True(t, picker.pickCalls[0].IncludeExif)
}

func TestGateway_RecordOnlyOffersVideos(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{pick: media.RawPick{Path: "/rec.mov", MimeType: "video/quicktime"}}
	g := newTestGateway(perm, picker)

	_, err := g.Acquire(context.Background(), media.SourceRecord)
	require.NoError(t, err)
	assert.Equal(t, media.FilterVideos, picker.pickCalls[0].Filter)
}

func TestGateway_AcquireLivePhoto(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{live: media.RawLivePhoto{
		PhotoPath:       "/lp/IMG_0001.HEIC",
		VideoPath:       "/lp/IMG_0001.MOV",
		LocalIdentifier: "ABC/L0/001",
		DurationSeconds: 2.8,
		PixelWidth:      3024,
		PixelHeight:     4032,
		Created:         1735372800,
	}}
	g := newTestGateway(perm, picker, WithLivePhotoSupport(true))

	entity, err := g.Acquire(context.Background(), media.SourceLivePhoto)
	require.NoError(t, err)

	lp, ok := entity.(*media.LivePhoto)
	require.True(t, ok, "expected *media.LivePhoto, got %T", entity)
	assert.Equal(t, "/lp/IMG_0001.MOV", lp.Video.Path)
	assert.Nil(t, lp.Transcription)
	assert.Equal(t, 1, picker.liveCalls)
	assert.Empty(t, picker.pickCalls)
}

func TestGateway_IncompleteLivePhoto(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{live: media.RawLivePhoto{PhotoPath: "/lp/IMG_0001.HEIC"}}
	g := newTestGateway(perm, picker, WithLivePhotoSupport(true))

	entity, err := g.Acquire(context.Background(), media.SourceLivePhoto)

	assert.Nil(t, entity)
	assert.ErrorIs(t, err, media.ErrAcquisitionFailed)
	assert.ErrorIs(t, err, media.ErrIncompleteLivePhoto)
}

func TestGateway_LivePhotoWithoutVideoIsNotSilent(t *testing.T) {
	perm := &mockPermissions{granted: true}
	picker := &mockPicker{liveErr: fmt.Errorf("%w: no video given for IMG_0001.HEIC", media.ErrIncompleteLivePhoto)}
	g := newTestGateway(perm, picker, WithLivePhotoSupport(true))

	entity, err := g.Acquire(context.Background(), media.SourceLivePhoto)

	assert.Nil(t, entity)
	assert.ErrorIs(t, err, media.ErrAcquisitionFailed)
	assert.ErrorIs(t, err, media.ErrIncompleteLivePhoto)
}

func TestGateway_PickerFailure(t *testing.T) {
	tests := []struct {
		name   string
		picker *mockPicker
	}{
		{"picker error", &mockPicker{pickErr: errors.New("picker crashed")}},
		{"empty path", &mockPicker{pick: media.RawPick{MimeType: "video/mp4"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(&mockPermissions{granted: true}, tt.picker)

			entity, err := g.Acquire(context.Background(), media.SourceGallery)

			assert.Nil(t, entity)
			assert.ErrorIs(t, err, media.ErrAcquisitionFailed)
		})
	}
}
