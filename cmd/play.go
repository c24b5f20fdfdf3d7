package cmd

import (
	"context"
	"fmt"
	"time"

	appplayback "livephoto-audio/application/playback"
	"livephoto-audio/domain/playback"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/prompt"

	"github.com/spf13/cobra"
)

var playSourcePath string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an audio file",
	Long: `Play an audio file with ffplay and print the position while it plays.

Playback ends at the end of the file or on Ctrl+C.

Example:
  livephoto-audio play --source IMG_0042_cleaned_1735372800123.m4a`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playSourcePath, "source", "", "Path to audio file (required)")
	playCmd.MarkFlagRequired("source")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	return RunPlayWithDependencies(
		ctx,
		newPlayerProvider(cfg, logger),
		newEngine(cfg, logger).Prober(),
		filesystem.ExpandHome(playSourcePath),
		cfg.Playback.PollInterval,
		DefaultOutput,
	)
}

// RunPlayWithDependencies runs the play command with injected dependencies (for testing).
// It returns when playback completes or ctx is cancelled.
func RunPlayWithDependencies(
	ctx context.Context,
	provider playback.ResourceProvider,
	prober prompt.MetadataProber,
	sourcePath string,
	pollInterval time.Duration,
	output OutputWriter,
) error {
	artifact, err := artifactFromFile(ctx, prober, sourcePath)
	if err != nil {
		return err
	}

	controller := appplayback.NewController(provider, appplayback.WithPollInterval(pollInterval))
	defer controller.Dispose()

	if err := controller.Load(ctx, artifact); err != nil {
		return err
	}

	states, cancelStates := controller.Subscribe(0)
	defer cancelStates()
	progress, cancelProgress := controller.SubscribeProgress(0)
	defer cancelProgress()

	fmt.Fprintf(output, "Playing %s (%s)\n", artifact.Filename(), describeArtifact(artifact))
	if err := controller.PlayPause(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(output, "\nStopped.")
			return nil
		case p, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			fmt.Fprintf(output, "\r%s / %s", formatPosition(p.Position), formatPosition(p.Duration))
		case s, ok := <-states:
			if !ok || s.Status != playback.StatusPlaying {
				fmt.Fprintln(output, "\nFinished.")
				return nil
			}
		}
	}
}

func formatPosition(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
