package cmd

import (
	"context"
	"errors"
	"fmt"

	"livephoto-audio/application/session"
	"livephoto-audio/domain/media"
	"livephoto-audio/domain/playback"
	"livephoto-audio/infrastructure/prompt"

	"github.com/spf13/cobra"
)

// Session menu entries
const (
	actionGallery    = "Pick an image or video"
	actionCamera     = "Take a photo"
	actionRecord     = "Record a video"
	actionLivePhoto  = "Pick a Live Photo"
	actionExtract    = "Extract audio"
	actionClean      = "Clean audio"
	actionPlayPause  = "Play / pause"
	actionStop       = "Stop playback"
	actionTranscribe = "Transcribe"
	actionExport     = "Export audio"
	actionSwitch     = "Switch context"
	actionQuit       = "Quit"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Work with media interactively",
	Long: `Start an interactive session. Pick an image, a video or a Live Photo,
extract its audio, clean it, listen to it and export it.

Regular media and Live Photos live in two separate contexts, each with its
own audio and player. Acquiring new media replaces the media of its context
only. Ctrl+C in the menu ends the session.`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	engine := newEngine(cfg, logger)
	gateway := newGateway(cfg, DefaultPrompter, engine.Prober(), logger)

	exporter, closeExporter, err := newExportService(ctx, cfg, DefaultPrompter, DefaultOutput, logger)
	if err != nil {
		return err
	}
	defer closeExporter()

	sess := session.New(session.Dependencies{
		Acquirer:     gateway,
		Engine:       engine,
		Player:       newPlayerProvider(cfg, logger),
		Exporter:     exporter,
		PollInterval: cfg.Playback.PollInterval,
		Logger:       logger,
	})
	defer sess.Close()

	return RunSessionWithDependencies(ctx, sess, DefaultPrompter, SessionOptions{LivePhoto: gateway.SupportsLivePhoto()}, DefaultOutput)
}

// SessionOptions controls which menu entries are offered
type SessionOptions struct {
	LivePhoto bool
}

// RunSessionWithDependencies runs the interactive menu until the user quits (for testing)
func RunSessionWithDependencies(
	ctx context.Context,
	sess *session.Session,
	prompter prompt.Prompter,
	opts SessionOptions,
	output OutputWriter,
) error {
	current := sess.Media()

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprintln(output, statusLine(current))
		choice, err := prompter.Select("What next?", menuFor(current, opts), "")
		if errors.Is(err, media.ErrUserCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		if choice == actionQuit {
			return nil
		}
		if choice == actionSwitch {
			current = otherContext(sess, current)
			continue
		}

		next, err := runAction(ctx, sess, current, choice, output)
		if next != nil {
			current = next
		}
		if msg, show := session.UserMessage(err); show {
			fmt.Fprintf(output, "Error: %s\n", msg)
		}
	}
}

// runAction performs one menu entry. It returns the context to continue in
// when the action moved to another one.
func runAction(ctx context.Context, sess *session.Session, current *session.Context, choice string, output OutputWriter) (*session.Context, error) {
	switch choice {
	case actionGallery, actionCamera, actionRecord, actionLivePhoto:
		source := sourceFor(choice)
		target := sess.ContextFor(source)
		entity, err := target.Acquire(ctx, source)
		if err != nil || entity == nil {
			return nil, err
		}
		fmt.Fprintf(output, "Acquired %s: %s\n", entity.Kind(), entity.Common().Path)
		return target, nil

	case actionExtract:
		fmt.Fprintln(output, "Extracting audio...")
		artifact, err := current.Extract(ctx)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(output, "Extracted: %s (%s)\n", artifact.Path, describeArtifact(artifact))

	case actionClean:
		fmt.Fprintln(output, "Cleaning audio...")
		artifact, err := current.Clean(ctx)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(output, "Cleaned: %s (%s)\n", artifact.Path, describeArtifact(artifact))

	case actionPlayPause:
		return nil, current.PlayPause(ctx)

	case actionStop:
		return nil, current.Player().Stop()

	case actionTranscribe:
		text, ok, err := current.Transcribe(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			fmt.Fprintln(output, "No transcription available.")
			return nil, nil
		}
		fmt.Fprintf(output, "Transcription:\n%s\n", text)

	case actionExport:
		dest, err := current.Export(ctx)
		if err != nil {
			return nil, err
		}
		if dest.Cancelled {
			return nil, nil
		}
		fmt.Fprintf(output, "Exported (%s): %s\n", dest.Method, dest)
	}
	return nil, nil
}

func menuFor(current *session.Context, opts SessionOptions) []string {
	items := []string{actionGallery, actionCamera, actionRecord}
	if opts.LivePhoto {
		items = append(items, actionLivePhoto)
	}

	if current.Entity() != nil {
		items = append(items, actionExtract)
	}
	if _, ok := current.Processor().Current(); ok {
		items = append(items, actionClean, actionPlayPause)
		if current.Player().State().Status.Loaded() {
			items = append(items, actionStop)
		}
		items = append(items, actionTranscribe, actionExport)
	}

	if opts.LivePhoto {
		items = append(items, actionSwitch)
	}
	return append(items, actionQuit)
}

func sourceFor(choice string) media.Source {
	switch choice {
	case actionCamera:
		return media.SourceCamera
	case actionRecord:
		return media.SourceRecord
	case actionLivePhoto:
		return media.SourceLivePhoto
	default:
		return media.SourceGallery
	}
}

func otherContext(sess *session.Session, current *session.Context) *session.Context {
	if current == sess.Media() {
		return sess.LivePhoto()
	}
	return sess.Media()
}

func statusLine(c *session.Context) string {
	entity := "no media"
	if e := c.Entity(); e != nil {
		entity = fmt.Sprintf("%s %s", e.Kind(), e.Common().Path)
	}

	state := c.Processor().State()
	audioStatus := string(state.Phase)
	if artifact, ok := state.Current(); ok {
		audioStatus = fmt.Sprintf("%s %s", state.Phase, artifact.Filename())
	}
	if state.Failed() {
		if msg, show := session.UserMessage(state.Err); show {
			audioStatus = fmt.Sprintf("%s (%s)", audioStatus, msg)
		}
	}

	ps := c.Player().State()
	player := string(ps.Status)
	if ps.Status.Loaded() {
		player = fmt.Sprintf("%s %s / %s", ps.Status, formatPosition(ps.Position), formatPosition(ps.Duration()))
	}
	if ps.Status == playback.StatusUnloaded {
		player = "stopped"
	}

	return fmt.Sprintf("[%s] %s | audio: %s | player: %s", c.Name(), entity, audioStatus, player)
}
