package audio

import "context"

// Engine is the native audio engine. Extraction and cleaning are treated as
// atomic: the caller always waits for a result or an error.
type Engine interface {
	// Extract derives a standalone audio file from the video at videoPath
	Extract(ctx context.Context, videoPath string) (ExtractResult, error)

	// Clean runs a noise reduction pass over inputPath and writes outputPath
	Clean(ctx context.Context, inputPath, outputPath string) (CleanResult, error)

	// Transcribe returns the spoken text of an audio file. ok is false when
	// the engine has nothing to offer.
	Transcribe(ctx context.Context, audioPath string) (text string, ok bool, err error)
}

// ExtractResult is what the engine reports after extraction
type ExtractResult struct {
	Path         string
	SizeBytes    int64
	Duration     float64
	SampleRateHz int
	Format       string
}

// Artifact converts the result into a fresh, unprocessed artifact
func (r ExtractResult) Artifact() Artifact {
	return Artifact{
		Path:            r.Path,
		SizeBytes:       r.SizeBytes,
		DurationSeconds: r.Duration,
		Format:          r.Format,
		SampleRateHz:    r.SampleRateHz,
	}
}

// CleanResult is what the engine reports after a cleaning pass.
// Only Path is required; nil fields were not reported.
type CleanResult struct {
	Path            string
	SizeBytes       *int64
	DurationSeconds *float64
	Format          *string
	SampleRateHz    *int
}
