package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Audio         AudioConfig         `yaml:"audio"`
	Cleaning      CleaningConfig      `yaml:"cleaning"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Playback      PlaybackConfig      `yaml:"playback"`
	Export        ExportConfig        `yaml:"export"`
	Google        GoogleConfig        `yaml:"google"`
	Platform      PlatformConfig      `yaml:"platform"`
	History       HistoryConfig       `yaml:"history"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// PathsConfig contains directory paths for audio artifacts and exports
type PathsConfig struct {
	AudioDirectory     string `yaml:"audio_directory"`     // empty: next to the source video
	DownloadsDirectory string `yaml:"downloads_directory"` // empty: XDG download dir or ~/Downloads
}

// AudioConfig contains audio encoding settings
type AudioConfig struct {
	Format     string `yaml:"format"`
	Codec      string `yaml:"codec"`
	Bitrate    string `yaml:"bitrate"`
	SampleRate int    `yaml:"sample_rate"`
}

// CleaningConfig contains the noise reduction filter settings
type CleaningConfig struct {
	HighpassHz   int   `yaml:"highpass_hz"`
	LowpassHz    int   `yaml:"lowpass_hz"`
	NoiseFloorDB int   `yaml:"noise_floor_db"`
	Loudnorm     *bool `yaml:"loudnorm"`
}

// FFmpegConfig contains executable locations
type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	FFplayPath  string `yaml:"ffplay_path"`
}

// TranscriptionConfig names an optional external transcription command.
// "{input}" in args is replaced by the audio path.
type TranscriptionConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// PlaybackConfig contains playback settings
type PlaybackConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Export methods
const (
	ExportAuto      = "auto"
	ExportShare     = "share"
	ExportDownloads = "downloads"
)

// ExportConfig selects how artifacts leave the app
type ExportConfig struct {
	Method       string `yaml:"method"`
	ConfirmShare *bool  `yaml:"confirm_share"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderID        string `yaml:"folder_id"`
}

// Configured reports whether Drive sharing can be set up
func (g GoogleConfig) Configured() bool {
	return g.CredentialsFile != "" && g.FolderID != ""
}

// PlatformConfig overrides platform capability detection
type PlatformConfig struct {
	LivePhoto string `yaml:"live_photo"` // auto, enabled or disabled
}

// HistoryConfig locates the export ledger database
type HistoryConfig struct {
	Database string `yaml:"database"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field with its default
func (c *Config) ApplyDefaults() {
	if c.Audio.Format == "" {
		c.Audio.Format = "m4a"
	}
	if c.Audio.Codec == "" {
		c.Audio.Codec = "aac"
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = "192k"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 44100
	}

	// A zeroed cleaning section means "not configured"; explicit zeros
	// alongside other values disable single filters.
	if c.Cleaning.HighpassHz == 0 && c.Cleaning.LowpassHz == 0 && c.Cleaning.NoiseFloorDB == 0 && c.Cleaning.Loudnorm == nil {
		c.Cleaning.HighpassHz = 80
		c.Cleaning.LowpassHz = 12000
		c.Cleaning.NoiseFloorDB = -25
	}
	if c.Cleaning.Loudnorm == nil {
		c.Cleaning.Loudnorm = boolPtr(true)
	}

	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.FFmpeg.FFplayPath == "" {
		c.FFmpeg.FFplayPath = "ffplay"
	}

	if c.Playback.PollInterval <= 0 {
		c.Playback.PollInterval = 250 * time.Millisecond
	}

	if c.Export.Method == "" {
		c.Export.Method = ExportAuto
	}
	if c.Export.ConfirmShare == nil {
		c.Export.ConfirmShare = boolPtr(true)
	}

	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "config/token.json"
	}

	if c.Platform.LivePhoto == "" {
		c.Platform.LivePhoto = "auto"
	}

	if c.History.Database == "" {
		c.History.Database = "config/history.db"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate reports settings that cannot work
func (c *Config) Validate() error {
	switch c.Export.Method {
	case ExportAuto, ExportShare, ExportDownloads:
	default:
		return fmt.Errorf("export.method must be auto, share or downloads, got %q", c.Export.Method)
	}
	switch c.Platform.LivePhoto {
	case "auto", "enabled", "disabled":
	default:
		return fmt.Errorf("platform.live_photo must be auto, enabled or disabled, got %q", c.Platform.LivePhoto)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate must not be negative")
	}
	if c.Export.Method == ExportShare && !c.Google.Configured() {
		return fmt.Errorf("export.method share needs google.credentials_file and google.folder_id")
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file.
// Missing fields take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
