package media

import (
	"fmt"
	"strings"
	"time"
)

// FromRawPick normalizes an image or video picker result.
// The variant is chosen from the mime type; a missing mime yields an Image.
func FromRawPick(raw RawPick) (Entity, error) {
	if strings.TrimSpace(raw.Path) == "" {
		return nil, fmt.Errorf("%w: picker returned no path", ErrAcquisitionFailed)
	}

	attrs := Attributes{
		Path:       raw.Path,
		MimeType:   optionalString(raw.MimeType),
		SizeBytes:  nonNegative(raw.SizeBytes),
		Dimensions: dimensions(raw.Width, raw.Height),
		Created:    epoch(raw.Created),
		Modified:   epoch(raw.Modified),
	}

	if ClassifyMime(attrs.MimeType) == KindVideo {
		v := &Video{
			Attributes:      attrs,
			LocalIdentifier: optionalString(raw.LocalIdentifier),
			SourceURL:       optionalString(raw.SourceURL),
			Filename:        optionalString(raw.Filename),
			Crop:            crop(raw.Crop),
		}
		if raw.DurationMs != nil && *raw.DurationMs >= 0 {
			d := time.Duration(*raw.DurationMs) * time.Millisecond
			v.Duration = &d
		}
		return v, nil
	}

	img := &Image{
		Attributes:      attrs,
		LocalIdentifier: optionalString(raw.LocalIdentifier),
		SourceURL:       optionalString(raw.SourceURL),
		Filename:        optionalString(raw.Filename),
		Crop:            crop(raw.Crop),
	}
	if len(raw.Exif) > 0 {
		img.Exif = raw.Exif
	}
	return img, nil
}

// FromRawLivePhoto normalizes a Live Photo picker result. A result missing
// either the photo or the video is an acquisition failure.
func FromRawLivePhoto(raw RawLivePhoto) (*LivePhoto, error) {
	lp := &LivePhoto{
		Photo: PhotoComponent{
			Path:     strings.TrimSpace(raw.PhotoPath),
			Mime:     optionalString(raw.PhotoMime),
			Filename: optionalString(raw.PhotoFilename),
		},
		Video: VideoComponent{
			Path:     strings.TrimSpace(raw.VideoPath),
			Mime:     optionalString(raw.VideoMime),
			Filename: optionalString(raw.VideoFilename),
		},
		AudioPath:       optionalString(raw.AudioPath),
		LocalIdentifier: optionalString(raw.LocalIdentifier),
		Transcription:   optionalString(raw.Transcription),
		Location:        raw.Location,
		PixelWidth:      raw.PixelWidth,
		PixelHeight:     raw.PixelHeight,
	}
	if raw.DurationSeconds > 0 {
		lp.Video.Duration = time.Duration(raw.DurationSeconds * float64(time.Second))
	}
	if raw.Created > 0 {
		lp.Created = time.Unix(raw.Created, 0).UTC()
	}
	if raw.Modified > 0 {
		lp.Modified = time.Unix(raw.Modified, 0).UTC()
	}

	if !IsLivePhotoComplete(lp) {
		return nil, fmt.Errorf("%w: %w", ErrAcquisitionFailed, ErrIncompleteLivePhoto)
	}
	return lp, nil
}

// String returns a pointer to s, or nil when s is empty
func String(s string) *string {
	return optionalString(s)
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func nonNegative(n *int64) *int64 {
	if n == nil || *n < 0 {
		return nil
	}
	v := *n
	return &v
}

func dimensions(w, h *int) *Dimensions {
	if w == nil || h == nil || *w <= 0 || *h <= 0 {
		return nil
	}
	return &Dimensions{Width: *w, Height: *h}
}

func epoch(secs *int64) *time.Time {
	if secs == nil || *secs <= 0 {
		return nil
	}
	t := time.Unix(*secs, 0).UTC()
	return &t
}

func crop(c *CropRect) *CropRect {
	if c == nil || c.Width <= 0 || c.Height <= 0 {
		return nil
	}
	v := *c
	return &v
}
