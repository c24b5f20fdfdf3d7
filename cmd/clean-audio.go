package cmd

import (
	"context"
	"fmt"
	"time"

	"livephoto-audio/domain/audio"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/prompt"

	"github.com/spf13/cobra"
)

var cleanSourcePath string

var cleanAudioCmd = &cobra.Command{
	Use:   "clean-audio",
	Short: "Run a cleaning pass over an audio file",
	Long: `Run the configured noise reduction filter chain over an audio file.

The result is written next to the input as <name>_cleaned_<timestamp>.<ext>.
Cleaning a cleaned file replaces the earlier suffix instead of stacking it.

Example:
  livephoto-audio clean-audio --source IMG_0042.m4a`,
	RunE: runCleanAudio,
}

func init() {
	rootCmd.AddCommand(cleanAudioCmd)
	cleanAudioCmd.Flags().StringVar(&cleanSourcePath, "source", "", "Path to audio file (required)")
	cleanAudioCmd.MarkFlagRequired("source")
}

func runCleanAudio(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	engine := newEngine(cfg, logger)
	return RunCleanAudioWithDependencies(
		cmd.Context(),
		engine,
		engine.Prober(),
		filesystem.ExpandHome(cleanSourcePath),
		time.Now,
		DefaultOutput,
	)
}

// RunCleanAudioWithDependencies runs the clean-audio command with injected dependencies (for testing)
func RunCleanAudioWithDependencies(
	ctx context.Context,
	engine audio.Engine,
	prober prompt.MetadataProber,
	sourcePath string,
	now func() time.Time,
	output OutputWriter,
) error {
	input, err := artifactFromFile(ctx, prober, sourcePath)
	if err != nil {
		return err
	}

	outputPath := audio.CleanedPath(input.Path, now().UnixMilli())
	fmt.Fprintf(output, "Cleaning %s...\n", input.Path)

	res, err := engine.Clean(ctx, input.Path, outputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrCleaningFailed, err)
	}
	if res.Path == "" {
		res.Path = outputPath
	}

	cleaned := input.Cleaned(res)
	if err := cleaned.Validate(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrCleaningFailed, err)
	}

	fmt.Fprintf(output, "Successfully created: %s (%s)\n", cleaned.Path, describeArtifact(cleaned))
	return nil
}
