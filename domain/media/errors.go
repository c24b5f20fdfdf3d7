package media

import "errors"

var (
	// ErrPermissionDenied is returned when the user refuses camera or photo library access
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUserCancelled is returned by pickers and share sheets when the user backs out.
	// It is a normal outcome, not a failure.
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrUnsupportedPlatform is returned when a capability does not exist on this platform
	ErrUnsupportedPlatform = errors.New("not supported on this platform")

	// ErrInvalidMedia is returned when an operation needs a component the entity does not carry
	ErrInvalidMedia = errors.New("invalid media")

	// ErrAcquisitionFailed is returned when a picker result cannot be turned into an entity
	ErrAcquisitionFailed = errors.New("acquisition failed")

	// ErrIncompleteLivePhoto is returned when a Live Photo is missing its photo or video component
	ErrIncompleteLivePhoto = errors.New("live photo is missing its photo or video component")
)
