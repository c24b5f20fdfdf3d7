package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	appaudio "livephoto-audio/application/audio"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/media"
	"livephoto-audio/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	extractSourcePath string
	extractClean      bool
	extractTranscribe bool
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track of a video (or the motion part of a Live Photo)
into the configured audio format.

The output is written to the configured audio directory, or next to the
video when none is set. --clean runs a cleaning pass over the result.

Example:
  livephoto-audio extract-audio --source IMG_0042.MOV
  livephoto-audio extract-audio --source ~/Movies/talk.mp4 --clean --transcribe`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSourcePath, "source", "", "Path to source video file (required)")
	extractAudioCmd.Flags().BoolVar(&extractClean, "clean", false, "Run a cleaning pass after extraction")
	extractAudioCmd.Flags().BoolVar(&extractTranscribe, "transcribe", false, "Print a transcription of the result")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	return RunExtractAudioWithDependencies(
		cmd.Context(),
		newEngine(cfg, logger),
		filesystem.NewChecker(),
		filesystem.ExpandHome(extractSourcePath),
		ExtractOptions{Clean: extractClean, Transcribe: extractTranscribe},
		DefaultOutput,
	)
}

// ExtractOptions selects the optional steps after extraction
type ExtractOptions struct {
	Clean      bool
	Transcribe bool
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	engine audio.Engine,
	fileChecker media.FileChecker,
	sourcePath string,
	opts ExtractOptions,
	output OutputWriter,
) error {
	if !fileChecker.Exists(sourcePath) {
		return fmt.Errorf("source video not found: %s", sourcePath)
	}

	if verifiable, ok := engine.(interface{ VerifyInstalled(context.Context) error }); ok {
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
			return fmt.Errorf("ffmpeg verification failed: %w", err)
		}
	}

	filename := filepath.Base(sourcePath)
	processor := appaudio.NewProcessor(engine)
	defer processor.Close()

	if err := processor.Bind(&media.Video{
		Attributes: media.Attributes{Path: sourcePath},
		Filename:   &filename,
	}); err != nil {
		return err
	}

	fmt.Fprintf(output, "Extracting audio from %s...\n", sourcePath)
	artifact, err := processor.RequestExtract(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "Successfully created: %s (%s)\n", artifact.Path, describeArtifact(artifact))

	if opts.Clean {
		fmt.Fprintln(output, "Cleaning audio...")
		artifact, err = processor.RequestClean(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "Successfully created: %s (%s)\n", artifact.Path, describeArtifact(artifact))
	}

	if opts.Transcribe {
		return printTranscription(ctx, processor, output)
	}
	return nil
}

func printTranscription(ctx context.Context, processor *appaudio.Processor, output OutputWriter) error {
	text, ok, err := processor.Transcribe(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(output, "No transcription available.")
		return nil
	}
	fmt.Fprintf(output, "Transcription:\n%s\n", text)
	return nil
}

// describeArtifact renders duration, size and format for progress output
func describeArtifact(a audio.Artifact) string {
	d := time.Duration(a.DurationSeconds * float64(time.Second)).Round(time.Second / 10)
	return fmt.Sprintf("%s, %s, %s %d Hz", d, formatBytes(a.SizeBytes), a.Format, a.SampleRateHz)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
