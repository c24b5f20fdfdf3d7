package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// setting binds a dotted key to a field of Config
type setting struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// ConfigManager reads and updates single settings by dotted key
// (e.g. "audio.bitrate") and persists every change
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Entry is a key with its current value
type Entry struct {
	Key   string
	Value string
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.get(m.config), nil
}

// Set validates and stores value under key, then saves the file. The
// in-memory config is left unchanged when validation fails.
func (m *ConfigManager) Set(key, value string) error {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	candidate := *m.config
	if err := s.set(&candidate, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, key, err)
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, key, err)
	}

	*m.config = candidate
	return Save(m.config, m.configPath)
}

// List returns every key with its current value
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: settings[k].get(m.config)})
	}
	return entries
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func stringSetting(field func(c *Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func intSetting(field func(c *Config) *int) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%q is not a number", v)
			}
			*field(c) = n
			return nil
		},
	}
}

func boolSetting(field func(c *Config) **bool) setting {
	return setting{
		get: func(c *Config) string {
			b := *field(c)
			return strconv.FormatBool(b != nil && *b)
		},
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%q is not true or false", v)
			}
			*field(c) = &b
			return nil
		},
	}
}

var settings = map[string]setting{
	"paths.audio_directory":     stringSetting(func(c *Config) *string { return &c.Paths.AudioDirectory }),
	"paths.downloads_directory": stringSetting(func(c *Config) *string { return &c.Paths.DownloadsDirectory }),
	"audio.format":              stringSetting(func(c *Config) *string { return &c.Audio.Format }),
	"audio.codec":               stringSetting(func(c *Config) *string { return &c.Audio.Codec }),
	"audio.bitrate":             stringSetting(func(c *Config) *string { return &c.Audio.Bitrate }),
	"audio.sample_rate":         intSetting(func(c *Config) *int { return &c.Audio.SampleRate }),
	"cleaning.highpass_hz":      intSetting(func(c *Config) *int { return &c.Cleaning.HighpassHz }),
	"cleaning.lowpass_hz":       intSetting(func(c *Config) *int { return &c.Cleaning.LowpassHz }),
	"cleaning.noise_floor_db":   intSetting(func(c *Config) *int { return &c.Cleaning.NoiseFloorDB }),
	"cleaning.loudnorm":         boolSetting(func(c *Config) **bool { return &c.Cleaning.Loudnorm }),
	"ffmpeg.ffmpeg_path":        stringSetting(func(c *Config) *string { return &c.FFmpeg.FFmpegPath }),
	"ffmpeg.ffprobe_path":       stringSetting(func(c *Config) *string { return &c.FFmpeg.FFprobePath }),
	"ffmpeg.ffplay_path":        stringSetting(func(c *Config) *string { return &c.FFmpeg.FFplayPath }),
	"transcription.command":     stringSetting(func(c *Config) *string { return &c.Transcription.Command }),
	"playback.poll_interval": {
		get: func(c *Config) string { return c.Playback.PollInterval.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("%q is not a positive duration", v)
			}
			c.Playback.PollInterval = d
			return nil
		},
	},
	"export.method":           stringSetting(func(c *Config) *string { return &c.Export.Method }),
	"export.confirm_share":    boolSetting(func(c *Config) **bool { return &c.Export.ConfirmShare }),
	"google.credentials_file": stringSetting(func(c *Config) *string { return &c.Google.CredentialsFile }),
	"google.token_file":       stringSetting(func(c *Config) *string { return &c.Google.TokenFile }),
	"google.folder_id":        stringSetting(func(c *Config) *string { return &c.Google.FolderID }),
	"platform.live_photo":     stringSetting(func(c *Config) *string { return &c.Platform.LivePhoto }),
	"history.database":        stringSetting(func(c *Config) *string { return &c.History.Database }),
	"logging.level":           stringSetting(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":          stringSetting(func(c *Config) *string { return &c.Logging.Format }),
}
