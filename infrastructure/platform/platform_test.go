package platform

import (
	"errors"
	"testing"

	"livephoto-audio/infrastructure/config"
)

func found(string) (string, error) { return "/usr/bin/ffprobe", nil }
func missing(string) (string, error) { return "", errors.New("executable file not found") }

func TestDetector_LivePhoto(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		goos     string
		lookPath func(string) (string, error)
		want     bool
	}{
		{"enabled overrides host", LivePhotoEnabled, "linux", missing, true},
		{"disabled overrides host", LivePhotoDisabled, "darwin", found, false},
		{"auto on darwin", LivePhotoAuto, "darwin", missing, true},
		{"auto on linux with ffprobe", LivePhotoAuto, "linux", found, true},
		{"auto on linux without ffprobe", LivePhotoAuto, "linux", missing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Platform.LivePhoto = tt.mode

			d := NewDetector(WithGOOS(tt.goos), WithLookPath(tt.lookPath))
			if got := d.Detect(cfg).LivePhoto; got != tt.want {
				t.Errorf("LivePhoto = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetector_Share(t *testing.T) {
	tests := []struct {
		name   string
		method string
		google config.GoogleConfig
		want   bool
	}{
		{"auto without google", config.ExportAuto, config.GoogleConfig{}, false},
		{"auto with google", config.ExportAuto, config.GoogleConfig{CredentialsFile: "c.json", FolderID: "f"}, true},
		{"downloads with google", config.ExportDownloads, config.GoogleConfig{CredentialsFile: "c.json", FolderID: "f"}, false},
		{"share", config.ExportShare, config.GoogleConfig{CredentialsFile: "c.json", FolderID: "f"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Export.Method = tt.method
			cfg.Google = tt.google

			if got := NewDetector(WithLookPath(missing)).Detect(cfg).Share; got != tt.want {
				t.Errorf("Share = %v, want %v", got, tt.want)
			}
		})
	}
}
