package playback

import "errors"

var (
	// ErrNotLoaded is returned when a command needs a loaded artifact
	ErrNotLoaded = errors.New("no audio loaded")

	// ErrDisposed is returned by every command after Dispose
	ErrDisposed = errors.New("player has been disposed")

	// ErrLoadFailed is returned when the resource cannot be opened
	ErrLoadFailed = errors.New("failed to load audio")
)
