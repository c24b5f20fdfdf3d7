package playback

import "context"

// Handle is an opened playback resource. Implementations must be safe for
// concurrent use: the position poller reads Position while the controller
// issues commands.
type Handle interface {
	// Play starts or resumes playback. onComplete is called once if playback
	// reaches the end naturally; never after Pause, Stop or Release. A Seek
	// while playing keeps the callback armed.
	Play(onComplete func()) error
	Pause() error
	Stop() error
	// Position returns the playback position in seconds
	Position() float64
	Seek(seconds float64) error
	// Release frees the resource. The handle is unusable afterwards.
	Release() error
}

// ResourceProvider opens playback resources
type ResourceProvider interface {
	Open(ctx context.Context, path string) (Handle, error)
}
