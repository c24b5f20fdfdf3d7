package playback

import "livephoto-audio/domain/audio"

// Status is the lifecycle status of a playback controller
type Status string

const (
	StatusUnloaded Status = "unloaded"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusPlaying  Status = "playing"
	StatusDisposed Status = "disposed"
)

// Loaded reports whether a resource is open in this status
func (s Status) Loaded() bool {
	return s == StatusReady || s == StatusPlaying
}

// State is a snapshot of a playback controller
type State struct {
	Status   Status
	Artifact *audio.Artifact
	Position float64
}

// Duration returns the duration of the loaded artifact, or 0
func (s State) Duration() float64 {
	if s.Artifact == nil {
		return 0
	}
	return s.Artifact.DurationSeconds
}

// Progress is emitted by the position poller while playing
type Progress struct {
	Position float64
	Duration float64
}

// Clamp limits seconds to [0, duration]. A non-positive duration only clamps at zero.
func Clamp(seconds, duration float64) float64 {
	if seconds < 0 {
		return 0
	}
	if duration > 0 && seconds > duration {
		return duration
	}
	return seconds
}
