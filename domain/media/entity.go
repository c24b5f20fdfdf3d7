package media

import "time"

// Kind classifies a media entity
type Kind string

const (
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindLivePhoto Kind = "live_photo"
)

// Entity is a picked media item. It is implemented only by *Image, *Video and *LivePhoto.
type Entity interface {
	// Kind returns the variant of the entity
	Kind() Kind

	// Common returns the attributes shared by every variant
	Common() Attributes

	sealed()
}

// Dimensions holds a positive width/height pair
type Dimensions struct {
	Width  int
	Height int
}

// CropRect is the crop applied by the picker, in pixels
type CropRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Location is where a Live Photo was captured
type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  *float64
}

// Attributes are the fields common to every media variant.
// Nil pointers mean "unknown", which is distinct from a zero value.
type Attributes struct {
	Path       string
	MimeType   *string
	SizeBytes  *int64
	Dimensions *Dimensions
	Created    *time.Time
	Modified   *time.Time
}

// Image is a still image picked from the camera or gallery
type Image struct {
	Attributes
	LocalIdentifier *string
	SourceURL       *string
	Filename        *string
	Crop            *CropRect
	Exif            map[string]any
}

// Kind implements Entity
func (i *Image) Kind() Kind { return KindImage }

// Common implements Entity
func (i *Image) Common() Attributes { return i.Attributes }

func (i *Image) sealed() {}

// Video is a video picked from the gallery or recorded with the camera
type Video struct {
	Attributes
	LocalIdentifier *string
	SourceURL       *string
	Filename        *string
	Duration        *time.Duration
	Crop            *CropRect
}

// Kind implements Entity
func (v *Video) Kind() Kind { return KindVideo }

// Common implements Entity
func (v *Video) Common() Attributes { return v.Attributes }

func (v *Video) sealed() {}

// PhotoComponent is the still image half of a Live Photo
type PhotoComponent struct {
	Path     string
	Mime     *string
	Filename *string
}

// VideoComponent is the motion half of a Live Photo
type VideoComponent struct {
	Path     string
	Mime     *string
	Filename *string
	Duration time.Duration
}

// LivePhoto is a still image paired with a short video and an optional audio track
type LivePhoto struct {
	Photo           PhotoComponent
	Video           VideoComponent
	AudioPath       *string
	LocalIdentifier *string
	Transcription   *string
	Location        *Location
	PixelWidth      int
	PixelHeight     int
	Created         time.Time
	Modified        time.Time
}

// Kind implements Entity
func (l *LivePhoto) Kind() Kind { return KindLivePhoto }

// Common implements Entity. The common view is derived from the photo component.
func (l *LivePhoto) Common() Attributes {
	attrs := Attributes{
		Path:     l.Photo.Path,
		MimeType: l.Photo.Mime,
	}
	if l.PixelWidth > 0 && l.PixelHeight > 0 {
		attrs.Dimensions = &Dimensions{Width: l.PixelWidth, Height: l.PixelHeight}
	}
	if !l.Created.IsZero() {
		created := l.Created
		attrs.Created = &created
	}
	if !l.Modified.IsZero() {
		modified := l.Modified
		attrs.Modified = &modified
	}
	return attrs
}

func (l *LivePhoto) sealed() {}

// AspectRatio returns width/height, or 0 when the pixel size is unknown
func (l *LivePhoto) AspectRatio() float64 {
	if l.PixelWidth <= 0 || l.PixelHeight <= 0 {
		return 0
	}
	return float64(l.PixelWidth) / float64(l.PixelHeight)
}
