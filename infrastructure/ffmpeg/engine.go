package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"livephoto-audio/domain/audio"
	"livephoto-audio/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
)

// ErrNoAudioStream is returned when the source video has no audio track
var ErrNoAudioStream = errors.New("video has no audio stream")

// AudioSettings controls the encoding of extracted and cleaned audio
type AudioSettings struct {
	Format     string // container extension, e.g. "m4a"
	Codec      string // ffmpeg encoder, e.g. "aac"
	Bitrate    string // e.g. "192k"
	SampleRate int    // Hz
}

// DefaultAudioSettings returns AAC in an m4a container at 44.1kHz
func DefaultAudioSettings() AudioSettings {
	return AudioSettings{Format: "m4a", Codec: "aac", Bitrate: "192k", SampleRate: 44100}
}

// CleaningSettings controls the noise reduction filter chain
type CleaningSettings struct {
	HighpassHz   int
	LowpassHz    int
	NoiseFloorDB int
	Loudnorm     bool
}

// DefaultCleaningSettings returns a speech-oriented filter chain
func DefaultCleaningSettings() CleaningSettings {
	return CleaningSettings{HighpassHz: 80, LowpassHz: 12000, NoiseFloorDB: -25, Loudnorm: true}
}

// FilterChain renders the settings as an ffmpeg -af argument
func (c CleaningSettings) FilterChain() string {
	var filters []string
	if c.HighpassHz > 0 {
		filters = append(filters, fmt.Sprintf("highpass=f=%d", c.HighpassHz))
	}
	if c.LowpassHz > 0 {
		filters = append(filters, fmt.Sprintf("lowpass=f=%d", c.LowpassHz))
	}
	if c.NoiseFloorDB < 0 {
		filters = append(filters, fmt.Sprintf("afftdn=nf=%d", c.NoiseFloorDB))
	}
	if c.Loudnorm {
		filters = append(filters, "loudnorm")
	}
	if len(filters) == 0 {
		return "anull"
	}
	return strings.Join(filters, ",")
}

// Engine implements audio.Engine with ffmpeg, ffprobe and an optional
// external transcription command
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	runner      CommandRunner
	outputDir   string
	audio       AudioSettings
	cleaning    CleaningSettings
	transcriber []string
	logger      logrus.FieldLogger
	now         func() time.Time

	prober *Prober

	mu        sync.Mutex
	lastStamp int64
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) EngineOption {
	return func(e *Engine) {
		if path != "" {
			e.ffprobePath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EngineOption {
	return func(e *Engine) {
		e.runner = runner
	}
}

// WithOutputDir writes extracted audio into dir instead of next to the video
func WithOutputDir(dir string) EngineOption {
	return func(e *Engine) {
		e.outputDir = dir
	}
}

// WithAudioSettings sets the output encoding
func WithAudioSettings(s AudioSettings) EngineOption {
	return func(e *Engine) {
		e.audio = s
	}
}

// WithCleaningSettings sets the cleaning filter chain
func WithCleaningSettings(s CleaningSettings) EngineOption {
	return func(e *Engine) {
		e.cleaning = s
	}
}

// WithTranscriber sets the transcription command. "{input}" in args is
// replaced with the audio path; without it the path is appended.
func WithTranscriber(command string, args ...string) EngineOption {
	return func(e *Engine) {
		if command == "" {
			e.transcriber = nil
			return
		}
		e.transcriber = append([]string{command}, args...)
	}
}

// WithClock sets the time source for output file stamps (for testing)
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new ffmpeg-backed audio engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
		audio:       DefaultAudioSettings(),
		cleaning:    DefaultCleaningSettings(),
		logger:      logrus.StandardLogger(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logger = e.logger.WithField("component", "ffmpeg")
	e.prober = NewProber(e.ffprobePath, e.runner)
	return e
}

// Prober returns the ffprobe reader the engine uses
func (e *Engine) Prober() *Prober {
	return e.prober
}

// ExtractedPath returns where the audio of videoPath is written for a given
// stamp: "<dir>/<video stem>_<stamp>.<format>"
func (e *Engine) ExtractedPath(videoPath string, stamp int64) string {
	local := filesystem.LocalPath(videoPath)
	dir := filepath.Dir(local)
	if e.outputDir != "" {
		dir = e.outputDir
	}
	stem := strings.TrimSuffix(filepath.Base(local), filepath.Ext(local))
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", stem, stamp, e.format()))
}

// nextStamp returns a millisecond stamp strictly greater than any earlier one
// from this engine. Every extraction gets its own file, whichever context
// asked for it.
func (e *Engine) nextStamp() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	stamp := e.now().UnixMilli()
	if stamp <= e.lastStamp {
		stamp = e.lastStamp + 1
	}
	e.lastStamp = stamp
	return stamp
}

// Extract implements audio.Engine
func (e *Engine) Extract(ctx context.Context, videoPath string) (audio.ExtractResult, error) {
	src := filesystem.LocalPath(videoPath)

	info, err := e.prober.Probe(ctx, src)
	if err != nil {
		return audio.ExtractResult{}, err
	}
	if !info.HasAudio {
		return audio.ExtractResult{}, fmt.Errorf("%w: %s", ErrNoAudioStream, filepath.Base(src))
	}

	outputPath := e.ExtractedPath(videoPath, e.nextStamp())
	args := []string{
		"-i", src,
		"-vn", // No video
		"-acodec", e.audio.Codec,
		"-b:a", e.audio.Bitrate,
	}
	if e.audio.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(e.audio.SampleRate))
	}
	args = append(args, "-n", outputPath) // Never overwrite an existing artifact

	e.logger.WithFields(logrus.Fields{"input": src, "output": outputPath}).Debug("running ffmpeg extract")
	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return audio.ExtractResult{}, fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}

	out, err := e.prober.Probe(ctx, outputPath)
	if err != nil {
		return audio.ExtractResult{}, fmt.Errorf("failed to read extracted audio: %w", err)
	}

	return audio.ExtractResult{
		Path:         outputPath,
		SizeBytes:    out.SizeBytes,
		Duration:     out.Duration,
		SampleRateHz: out.SampleRateHz,
		Format:       e.format(),
	}, nil
}

// Clean implements audio.Engine
func (e *Engine) Clean(ctx context.Context, inputPath, outputPath string) (audio.CleanResult, error) {
	src := filesystem.LocalPath(inputPath)
	dst := filesystem.LocalPath(outputPath)

	args := []string{
		"-i", src,
		"-vn",
		"-af", e.cleaning.FilterChain(),
		"-acodec", e.audio.Codec,
		"-b:a", e.audio.Bitrate,
	}
	if e.audio.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(e.audio.SampleRate))
	}
	args = append(args, "-y", dst)

	e.logger.WithFields(logrus.Fields{"input": src, "output": dst}).Debug("running ffmpeg clean")
	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return audio.CleanResult{}, fmt.Errorf("ffmpeg audio cleaning failed: %w", err)
	}

	res := audio.CleanResult{Path: dst}
	info, err := e.prober.Probe(ctx, dst)
	if err != nil {
		// The file exists; metadata carries over from the input artifact
		e.logger.WithError(err).Debug("could not probe cleaned audio")
		return res, nil
	}

	if info.SizeBytes > 0 {
		res.SizeBytes = &info.SizeBytes
	}
	if info.Duration > 0 {
		res.DurationSeconds = &info.Duration
	}
	if info.SampleRateHz > 0 {
		res.SampleRateHz = &info.SampleRateHz
	}
	format := strings.TrimPrefix(filepath.Ext(dst), ".")
	if format != "" {
		res.Format = &format
	}
	return res, nil
}

// Transcribe implements audio.Engine. Without a configured command there is
// nothing to offer and ok is false.
func (e *Engine) Transcribe(ctx context.Context, audioPath string) (string, bool, error) {
	if len(e.transcriber) == 0 {
		return "", false, nil
	}

	path := filesystem.LocalPath(audioPath)
	args := make([]string, 0, len(e.transcriber))
	substituted := false
	for _, arg := range e.transcriber[1:] {
		if strings.Contains(arg, "{input}") {
			arg = strings.ReplaceAll(arg, "{input}", path)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, path)
	}

	out, err := e.runner.Output(ctx, e.transcriber[0], args...)
	if err != nil {
		return "", false, fmt.Errorf("transcription command failed: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// VerifyInstalled checks that ffmpeg and ffprobe are available
func (e *Engine) VerifyInstalled(ctx context.Context) error {
	if _, err := e.runner.Output(ctx, e.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return e.prober.VerifyInstalled(ctx)
}

func (e *Engine) format() string {
	if e.audio.Format == "" {
		return "m4a"
	}
	return strings.TrimPrefix(e.audio.Format, ".")
}

// Ensure Engine implements audio.Engine
var _ audio.Engine = (*Engine)(nil)
