package media

import (
	"fmt"
	"strings"
)

// Classify returns the kind of an entity. It never panics: a nil entity yields
// ErrInvalidMedia and a Live Photo missing either component yields ErrAcquisitionFailed.
func Classify(e Entity) (Kind, error) {
	switch v := e.(type) {
	case *Image:
		if v == nil {
			return "", fmt.Errorf("%w: nil image", ErrInvalidMedia)
		}
		return KindImage, nil
	case *Video:
		if v == nil {
			return "", fmt.Errorf("%w: nil video", ErrInvalidMedia)
		}
		return KindVideo, nil
	case *LivePhoto:
		if !IsLivePhotoComplete(v) {
			return "", fmt.Errorf("%w: %w", ErrAcquisitionFailed, ErrIncompleteLivePhoto)
		}
		return KindLivePhoto, nil
	default:
		return "", fmt.Errorf("%w: no entity", ErrInvalidMedia)
	}
}

// ClassifyMime decides between image and video from a mime type.
// Unknown or malformed mime types are treated as images.
func ClassifyMime(mime *string) Kind {
	if mime == nil {
		return KindImage
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(*mime)), "video/") {
		return KindVideo
	}
	return KindImage
}

// IsLivePhotoComplete reports whether e is a Live Photo with both component paths set
func IsLivePhotoComplete(e Entity) bool {
	lp, ok := e.(*LivePhoto)
	if !ok || lp == nil {
		return false
	}
	return strings.TrimSpace(lp.Photo.Path) != "" && strings.TrimSpace(lp.Video.Path) != ""
}

// VideoSource returns the path of the entity's video component, if it has one
func VideoSource(e Entity) (string, bool) {
	switch v := e.(type) {
	case *Video:
		if v == nil || strings.TrimSpace(v.Path) == "" {
			return "", false
		}
		return v.Path, true
	case *LivePhoto:
		if !IsLivePhotoComplete(v) {
			return "", false
		}
		return v.Video.Path, true
	default:
		return "", false
	}
}
