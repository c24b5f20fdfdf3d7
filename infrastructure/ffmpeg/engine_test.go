package ffmpeg

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// mockCommandRunner records calls and returns canned ffprobe output per path
type mockCommandRunner struct {
	calls     []mockCall
	probes    map[string]string // path -> ffprobe JSON
	runErr    error
	outputs   map[string]string // command name -> stdout for non-ffprobe commands
	outputErr error
}

type mockCall struct {
	name string
	args []string
}

func (m *mockCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	return m.runErr
}

func (m *mockCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{name: name, args: args})
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	if name == "ffprobe" && len(args) > 1 {
		if out, ok := m.probes[args[len(args)-1]]; ok {
			return []byte(out), nil
		}
		return nil, errors.New("exit status 1")
	}
	return []byte(m.outputs[name]), nil
}

func (m *mockCommandRunner) runCalls() []mockCall {
	var out []mockCall
	for _, c := range m.calls {
		if c.name == "ffmpeg" {
			out = append(out, c)
		}
	}
	return out
}

const videoProbe = `{
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "5.233", "size": "4096000",
             "tags": {"creation_time": "2025-01-05T14:30:15.000000Z"}},
  "streams": [
    {"codec_type": "video", "codec_name": "hevc", "width": 1920, "height": 1080},
    {"codec_type": "audio", "codec_name": "aac", "sample_rate": "48000"}
  ]
}`

const silentVideoProbe = `{
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "2.0", "size": "1000"},
  "streams": [{"codec_type": "video", "codec_name": "h264", "width": 640, "height": 480}]
}`

const audioProbe = `{
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "5.200000", "size": "12000"},
  "streams": [{"codec_type": "audio", "codec_name": "aac", "sample_rate": "44100"}]
}`

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testClock is 2024-12-28 08:00:00.123 UTC
func testClock() time.Time {
	return time.UnixMilli(1735372800123)
}

func newTestEngine(runner *mockCommandRunner, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithCommandRunner(runner), WithLogger(quietLogger()), WithClock(testClock)}, opts...)
	return NewEngine(opts...)
}

func TestEngine_Extract(t *testing.T) {
	runner := &mockCommandRunner{probes: map[string]string{
		"/a.mp4":               videoProbe,
		"/a_1735372800123.m4a": audioProbe,
	}}
	e := newTestEngine(runner)

	res, err := e.Extract(context.Background(), "file:///a.mp4")
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if res.Path != "/a_1735372800123.m4a" || res.SizeBytes != 12000 || res.Duration != 5.2 || res.SampleRateHz != 44100 || res.Format != "m4a" {
		t.Errorf("Extract() = %+v", res)
	}

	runs := runner.runCalls()
	if len(runs) != 1 {
		t.Fatalf("expected 1 ffmpeg run, got %d", len(runs))
	}
	want := "-i /a.mp4 -vn -acodec aac -b:a 192k -ar 44100 -n /a_1735372800123.m4a"
	if got := strings.Join(runs[0].args, " "); got != want {
		t.Errorf("ffmpeg args = %q, want %q", got, want)
	}
}

func TestEngine_ExtractOutputDir(t *testing.T) {
	runner := &mockCommandRunner{probes: map[string]string{
		"/videos/IMG_0001.MOV":              videoProbe,
		"/audio/IMG_0001_1735372800123.m4a": audioProbe,
	}}
	e := newTestEngine(runner, WithOutputDir("/audio"))

	res, err := e.Extract(context.Background(), "/videos/IMG_0001.MOV")
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if res.Path != "/audio/IMG_0001_1735372800123.m4a" {
		t.Errorf("Extract() path = %q, want /audio/IMG_0001_1735372800123.m4a", res.Path)
	}
}

func TestEngine_ExtractSameStemGetsDistinctFiles(t *testing.T) {
	runner := &mockCommandRunner{probes: map[string]string{
		"/photos/IMG_0001.MOV":              videoProbe,
		"/gallery/IMG_0001.mp4":             videoProbe,
		"/audio/IMG_0001_1735372800123.m4a": audioProbe,
		"/audio/IMG_0001_1735372800124.m4a": audioProbe,
		"/audio/IMG_0001_1735372800125.m4a": audioProbe,
	}}
	e := newTestEngine(runner, WithOutputDir("/audio"))

	var paths []string
	for _, src := range []string{"/photos/IMG_0001.MOV", "file:///gallery/IMG_0001.mp4", "/photos/IMG_0001.MOV"} {
		res, err := e.Extract(context.Background(), src)
		if err != nil {
			t.Fatalf("Extract(%s) unexpected error: %v", src, err)
		}
		paths = append(paths, res.Path)
	}

	want := []string{
		"/audio/IMG_0001_1735372800123.m4a",
		"/audio/IMG_0001_1735372800124.m4a",
		"/audio/IMG_0001_1735372800125.m4a",
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("extraction %d path = %q, want %q", i, paths[i], want[i])
		}
	}
	for _, run := range runner.runCalls() {
		for _, arg := range run.args {
			if arg == "-y" {
				t.Errorf("extraction must not overwrite: %v", run.args)
			}
		}
	}
}

func TestEngine_ExtractNoAudio(t *testing.T) {
	runner := &mockCommandRunner{probes: map[string]string{"/silent.mp4": silentVideoProbe}}
	e := newTestEngine(runner)

	_, err := e.Extract(context.Background(), "/silent.mp4")
	if !errors.Is(err, ErrNoAudioStream) {
		t.Errorf("Extract() error = %v, want %v", err, ErrNoAudioStream)
	}
	if len(runner.runCalls()) != 0 {
		t.Error("ffmpeg must not run for a video without audio")
	}
}

func TestEngine_ExtractFfmpegFails(t *testing.T) {
	runner := &mockCommandRunner{
		probes: map[string]string{"/a.mp4": videoProbe},
		runErr: errors.New("exit status 1"),
	}
	e := newTestEngine(runner)

	_, err := e.Extract(context.Background(), "/a.mp4")
	if err == nil || !strings.Contains(err.Error(), "ffmpeg audio extraction failed") {
		t.Errorf("Extract() error = %v", err)
	}
}

func TestEngine_Clean(t *testing.T) {
	runner := &mockCommandRunner{probes: map[string]string{"/a_cleaned_7.m4a": audioProbe}}
	e := newTestEngine(runner)

	res, err := e.Clean(context.Background(), "/a.m4a", "/a_cleaned_7.m4a")
	if err != nil {
		t.Fatalf("Clean() unexpected error: %v", err)
	}
	if res.Path != "/a_cleaned_7.m4a" {
		t.Errorf("Clean() path = %q", res.Path)
	}
	if res.SizeBytes == nil || *res.SizeBytes != 12000 {
		t.Errorf("Clean() size = %v, want 12000", res.SizeBytes)
	}
	if res.Format == nil || *res.Format != "m4a" {
		t.Errorf("Clean() format = %v, want m4a", res.Format)
	}

	runs := runner.runCalls()
	if len(runs) != 1 {
		t.Fatalf("expected 1 ffmpeg run, got %d", len(runs))
	}
	args := strings.Join(runs[0].args, " ")
	if !strings.Contains(args, "-af highpass=f=80,lowpass=f=12000,afftdn=nf=-25,loudnorm") {
		t.Errorf("ffmpeg args = %q, want the cleaning filter chain", args)
	}
	if !strings.HasSuffix(args, "-y /a_cleaned_7.m4a") {
		t.Errorf("ffmpeg args = %q, want output last", args)
	}
}

func TestEngine_CleanWithoutProbe(t *testing.T) {
	runner := &mockCommandRunner{}
	e := newTestEngine(runner)

	res, err := e.Clean(context.Background(), "/a.m4a", "/a_cleaned_7.m4a")
	if err != nil {
		t.Fatalf("Clean() unexpected error: %v", err)
	}
	if res.SizeBytes != nil || res.DurationSeconds != nil {
		t.Errorf("Clean() = %+v, want unreported metadata", res)
	}
}

func TestEngine_CleanFails(t *testing.T) {
	runner := &mockCommandRunner{runErr: errors.New("exit status 1")}
	e := newTestEngine(runner)

	if _, err := e.Clean(context.Background(), "/a.m4a", "/b.m4a"); err == nil {
		t.Error("Clean() expected error")
	}
}

func TestCleaningSettings_FilterChain(t *testing.T) {
	tests := []struct {
		name     string
		settings CleaningSettings
		want     string
	}{
		{"defaults", DefaultCleaningSettings(), "highpass=f=80,lowpass=f=12000,afftdn=nf=-25,loudnorm"},
		{"denoise only", CleaningSettings{NoiseFloorDB: -30}, "afftdn=nf=-30"},
		{"nothing", CleaningSettings{}, "anull"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.FilterChain(); got != tt.want {
				t.Errorf("FilterChain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Transcribe(t *testing.T) {
	t.Run("no command configured", func(t *testing.T) {
		e := newTestEngine(&mockCommandRunner{})
		text, ok, err := e.Transcribe(context.Background(), "/a.m4a")
		if err != nil || ok || text != "" {
			t.Errorf("Transcribe() = %q, %v, %v; want nothing", text, ok, err)
		}
	})

	t.Run("placeholder substituted", func(t *testing.T) {
		runner := &mockCommandRunner{outputs: map[string]string{"whisper": "  hello there\n"}}
		e := newTestEngine(runner, WithTranscriber("whisper", "--file", "{input}", "--output-txt"))

		text, ok, err := e.Transcribe(context.Background(), "file:///a.m4a")
		if err != nil || !ok || text != "hello there" {
			t.Errorf("Transcribe() = %q, %v, %v", text, ok, err)
		}
		last := runner.calls[len(runner.calls)-1]
		if strings.Join(last.args, " ") != "--file /a.m4a --output-txt" {
			t.Errorf("args = %v", last.args)
		}
	})

	t.Run("path appended", func(t *testing.T) {
		runner := &mockCommandRunner{outputs: map[string]string{"transcribe": ""}}
		e := newTestEngine(runner, WithTranscriber("transcribe"))

		_, ok, err := e.Transcribe(context.Background(), "/a.m4a")
		if err != nil || ok {
			t.Errorf("Transcribe() ok = %v, err = %v; want empty output treated as none", ok, err)
		}
		last := runner.calls[len(runner.calls)-1]
		if len(last.args) != 1 || last.args[0] != "/a.m4a" {
			t.Errorf("args = %v", last.args)
		}
	})
}

func TestEngine_VerifyInstalled(t *testing.T) {
	if err := newTestEngine(&mockCommandRunner{}).VerifyInstalled(context.Background()); err != nil {
		t.Errorf("VerifyInstalled() unexpected error: %v", err)
	}

	runner := &mockCommandRunner{outputErr: errors.New("executable file not found")}
	if err := newTestEngine(runner).VerifyInstalled(context.Background()); err == nil {
		t.Error("VerifyInstalled() expected error")
	}
}

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(videoProbe))
	if err != nil {
		t.Fatalf("parseProbe() unexpected error: %v", err)
	}
	if !info.HasVideo || !info.HasAudio || info.Width != 1920 || info.SampleRateHz != 48000 {
		t.Errorf("parseProbe() = %+v", info)
	}
	if info.CreationTime == nil || info.CreationTime.Year() != 2025 {
		t.Errorf("CreationTime = %v", info.CreationTime)
	}

	if _, err := parseProbe([]byte("not json")); err == nil {
		t.Error("parseProbe() expected error for invalid JSON")
	}
}
