// Package platform decides which optional capabilities this host offers.
package platform

import (
	"os/exec"
	"runtime"

	"livephoto-audio/infrastructure/config"
)

// Live Photo modes
const (
	LivePhotoAuto     = "auto"
	LivePhotoEnabled  = "enabled"
	LivePhotoDisabled = "disabled"
)

// Capabilities are the optional features available on this host
type Capabilities struct {
	// LivePhoto is true when Live Photo pairs can be acquired
	LivePhoto bool
	// Share is true when exports go to a share target instead of the downloads directory
	Share bool
}

// Detector resolves capabilities from configuration and the host
type Detector struct {
	goos     string
	lookPath func(string) (string, error)
}

// DetectorOption is a functional option for configuring Detector
type DetectorOption func(*Detector)

// WithGOOS overrides the operating system name (for testing)
func WithGOOS(goos string) DetectorOption {
	return func(d *Detector) {
		d.goos = goos
	}
}

// WithLookPath overrides executable lookup (for testing)
func WithLookPath(fn func(string) (string, error)) DetectorOption {
	return func(d *Detector) {
		d.lookPath = fn
	}
}

// NewDetector creates a detector for the running host
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{goos: runtime.GOOS, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect resolves the capabilities for cfg
func (d *Detector) Detect(cfg *config.Config) Capabilities {
	return Capabilities{
		LivePhoto: d.livePhoto(cfg),
		Share:     shareEnabled(cfg),
	}
}

// livePhoto: Apple hosts always pair stills with their motion video. Elsewhere
// the pair can only be read with ffprobe, so auto requires it.
func (d *Detector) livePhoto(cfg *config.Config) bool {
	switch cfg.Platform.LivePhoto {
	case LivePhotoEnabled:
		return true
	case LivePhotoDisabled:
		return false
	}

	if d.goos == "darwin" || d.goos == "ios" {
		return true
	}
	probe := cfg.FFmpeg.FFprobePath
	if probe == "" {
		probe = "ffprobe"
	}
	_, err := d.lookPath(probe)
	return err == nil
}

func shareEnabled(cfg *config.Config) bool {
	switch cfg.Export.Method {
	case config.ExportShare:
		return true
	case config.ExportDownloads:
		return false
	default:
		return cfg.Google.Configured()
	}
}
