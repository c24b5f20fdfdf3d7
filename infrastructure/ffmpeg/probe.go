package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProbeInfo is the subset of ffprobe output the engine and the picker use
type ProbeInfo struct {
	FormatName   string
	SizeBytes    int64
	Duration     float64 // seconds
	HasAudio     bool
	HasVideo     bool
	AudioCodec   string
	SampleRateHz int
	Width        int
	Height       int
	CreationTime *time.Time
}

// Prober reads media metadata with ffprobe
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// NewProber creates a new Prober
func NewProber(ffprobePath string, runner CommandRunner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if runner == nil {
		runner = &ExecCommandRunner{}
	}
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Probe runs ffprobe on path
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	output, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(output)
}

// VerifyInstalled checks that ffprobe is available
func (p *Prober) VerifyInstalled(ctx context.Context) error {
	if _, err := p.runner.Output(ctx, p.ffprobePath, "-version"); err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

func parseProbe(output []byte) (*ProbeInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &ProbeInfo{FormatName: probe.Format.FormatName}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && dur >= 0 {
		info.Duration = dur
	}
	if size, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil && size >= 0 {
		info.SizeBytes = size
	}
	if t, ok := parseCreationTime(probe.Format.Tags.CreationTime); ok {
		info.CreationTime = &t
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			// Cover art shows up as a single-frame video stream
			if stream.Disposition.AttachedPic == 1 {
				continue
			}
			info.HasVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
			if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
				info.SampleRateHz = rate
			}
		}
	}

	return info, nil
}

func parseCreationTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		Tags       struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType   string `json:"codec_type"`
		CodecName   string `json:"codec_name"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		SampleRate  string `json:"sample_rate"`
		Disposition struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
}
