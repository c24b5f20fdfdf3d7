package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Audio.Format != "m4a" || cfg.Audio.Codec != "aac" || cfg.Audio.Bitrate != "192k" || cfg.Audio.SampleRate != 44100 {
		t.Errorf("unexpected audio defaults %+v", cfg.Audio)
	}
	if cfg.Cleaning.HighpassHz != 80 || cfg.Cleaning.LowpassHz != 12000 || cfg.Cleaning.NoiseFloorDB != -25 {
		t.Errorf("unexpected cleaning defaults %+v", cfg.Cleaning)
	}
	if cfg.Cleaning.Loudnorm == nil || !*cfg.Cleaning.Loudnorm {
		t.Error("loudnorm should default to on")
	}
	if cfg.Playback.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.Playback.PollInterval)
	}
	if cfg.Export.Method != ExportAuto || cfg.Export.ConfirmShare == nil || !*cfg.Export.ConfirmShare {
		t.Errorf("unexpected export defaults %+v", cfg.Export)
	}
	if cfg.Platform.LivePhoto != "auto" || cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected defaults platform=%q logging=%+v", cfg.Platform.LivePhoto, cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
paths:
  downloads_directory: /tmp/out
audio:
  bitrate: 128k
cleaning:
  highpass_hz: 100
  loudnorm: false
playback:
  poll_interval: 100ms
transcription:
  command: whisper
  args: ["--model", "base", "{input}"]
google:
  credentials_file: creds.json
  folder_id: abc
export:
  method: share
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Paths.DownloadsDirectory != "/tmp/out" {
		t.Errorf("DownloadsDirectory = %q", cfg.Paths.DownloadsDirectory)
	}
	if cfg.Audio.Bitrate != "128k" || cfg.Audio.Codec != "aac" {
		t.Errorf("Audio = %+v, want bitrate override and default codec", cfg.Audio)
	}
	if cfg.Cleaning.HighpassHz != 100 || cfg.Cleaning.LowpassHz != 0 {
		t.Errorf("Cleaning = %+v, explicit section keeps unset filters off", cfg.Cleaning)
	}
	if cfg.Cleaning.Loudnorm == nil || *cfg.Cleaning.Loudnorm {
		t.Error("loudnorm: false must be kept")
	}
	if cfg.Playback.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Playback.PollInterval)
	}
	if cfg.Transcription.Command != "whisper" || len(cfg.Transcription.Args) != 3 {
		t.Errorf("Transcription = %+v", cfg.Transcription)
	}
	if !cfg.Google.Configured() {
		t.Error("google should be configured")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"invalid yaml", "audio: [", "failed to parse config file"},
		{"bad export method", "export:\n  method: email\n", "export.method"},
		{"share without google", "export:\n  method: share\n", "google.credentials_file"},
		{"bad live photo mode", "platform:\n  live_photo: maybe\n", "platform.live_photo"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Google.FolderID = "folder"
	cfg.Playback.PollInterval = time.Second

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if loaded.Google.FolderID != "folder" || loaded.Playback.PollInterval != time.Second {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestConfigManager_GetSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	m := NewConfigManager(cfg, path)

	if v, err := m.Get("audio.bitrate"); err != nil || v != "192k" {
		t.Errorf("Get(audio.bitrate) = %q, %v", v, err)
	}

	if err := m.Set("Audio.Bitrate", "256k"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if cfg.Audio.Bitrate != "256k" {
		t.Errorf("Bitrate = %q, want 256k", cfg.Audio.Bitrate)
	}

	if err := m.Set("playback.poll_interval", "500ms"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if err := m.Set("cleaning.loudnorm", "false"); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}

	saved, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if saved.Audio.Bitrate != "256k" || saved.Playback.PollInterval != 500*time.Millisecond || *saved.Cleaning.Loudnorm {
		t.Errorf("saved = %+v", saved)
	}
}

func TestConfigManager_Errors(t *testing.T) {
	cfg := Default()
	m := NewConfigManager(cfg, filepath.Join(t.TempDir(), "config.yaml"))

	tests := []struct {
		key     string
		value   string
		wantErr error
	}{
		{"email.from", "x", ErrUnknownKey},
		{"audio.sample_rate", "fast", ErrInvalidValue},
		{"playback.poll_interval", "-1s", ErrInvalidValue},
		{"export.method", "email", ErrInvalidValue},
		{"export.confirm_share", "sometimes", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := m.Set(tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Set(%q, %q) error = %v, want %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}

	if cfg.Export.Method != ExportAuto {
		t.Errorf("failed Set must not change the config, got method %q", cfg.Export.Method)
	}
	if _, err := m.Get("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(nope) error = %v", err)
	}
}

func TestConfigManager_List(t *testing.T) {
	m := NewConfigManager(Default(), "")
	entries := m.List()

	if len(entries) != len(Keys()) {
		t.Fatalf("expected %d entries, got %d", len(Keys()), len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key > entries[i].Key {
			t.Fatalf("entries not sorted: %q before %q", entries[i-1].Key, entries[i].Key)
		}
	}
}
