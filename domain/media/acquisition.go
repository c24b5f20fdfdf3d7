package media

import "context"

// Source identifies where media is acquired from
type Source string

const (
	SourceCamera    Source = "camera"
	SourceGallery   Source = "gallery"
	SourceRecord    Source = "record"
	SourceLivePhoto Source = "live_photo"
)

// ParseSource parses a source name as used on the command line
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceCamera, SourceGallery, SourceRecord, SourceLivePhoto:
		return Source(s), true
	}
	return "", false
}

// Capability is a permission the acquisition needs before any picker runs
type Capability string

const (
	CapabilityCamera       Capability = "camera"
	CapabilityPhotoLibrary Capability = "photo_library"
)

// Capability returns the permission required to acquire from s
func (s Source) Capability() Capability {
	switch s {
	case SourceCamera, SourceRecord:
		return CapabilityCamera
	default:
		return CapabilityPhotoLibrary
	}
}

// MediaFilter restricts what the picker offers
type MediaFilter string

const (
	FilterAny    MediaFilter = "any"
	FilterImages MediaFilter = "images"
	FilterVideos MediaFilter = "videos"
)

// PickOptions configures a single image or video pick
type PickOptions struct {
	Source      Source
	Filter      MediaFilter
	IncludeExif bool
}

// RawPick is what a picker returns for an image or video, before normalization.
// Empty strings and nil pointers both mean "not reported".
type RawPick struct {
	Path            string
	MimeType        string
	SizeBytes       *int64
	Width           *int
	Height          *int
	DurationMs      *int64
	Created         *int64 // epoch seconds
	Modified        *int64 // epoch seconds
	LocalIdentifier string
	SourceURL       string
	Filename        string
	Crop            *CropRect
	Exif            map[string]any
}

// RawLivePhoto is what a Live Photo picker returns, before normalization
type RawLivePhoto struct {
	PhotoPath       string
	PhotoMime       string
	PhotoFilename   string
	VideoPath       string
	VideoMime       string
	VideoFilename   string
	AudioPath       string
	Transcription   string
	LocalIdentifier string
	Created         int64 // epoch seconds
	Modified        int64 // epoch seconds
	Location        *Location
	DurationSeconds float64
	PixelWidth      int
	PixelHeight     int
}

// PermissionProvider grants or refuses access to a capability
type PermissionProvider interface {
	// CheckOrRequest returns true if the capability is (or becomes) granted
	CheckOrRequest(ctx context.Context, capability Capability) (bool, error)
}

// Picker is the native picker engine. Implementations return ErrUserCancelled
// when the user backs out of the picker.
type Picker interface {
	PickImageOrVideo(ctx context.Context, opts PickOptions) (RawPick, error)
	PickLivePhoto(ctx context.Context) (RawLivePhoto, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}
