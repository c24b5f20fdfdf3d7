//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"livephoto-audio/application/session"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/domain/playback"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
)

// errorKinds names the error kinds scenarios can expect
var errorKinds = map[string]error{
	"extraction failed":  audio.ErrExtractionFailed,
	"cleaning failed":    audio.ErrCleaningFailed,
	"no artifact":        audio.ErrNoArtifact,
	"operation running":  audio.ErrOperationInProgress,
	"invalid media":      media.ErrInvalidMedia,
	"permission denied":  media.ErrPermissionDenied,
	"unsupported":        media.ErrUnsupportedPlatform,
	"incomplete":         media.ErrIncompleteLivePhoto,
	"acquisition failed": media.ErrAcquisitionFailed,
	"load failed":        playback.ErrLoadFailed,
	"not loaded":         playback.ErrNotLoaded,
	"export failed":      distribution.ErrExportFailed,
}

// sessionContext holds test state for processing and playback scenarios
type sessionContext struct {
	session  *session.Session
	current  *session.Context
	acquirer *fakeAcquirer
	engine   *fakeEngine
	provider *fakeProvider
	err      error
}

// SharedSessionContext is reset before each scenario via Before hook
var SharedSessionContext *sessionContext

func getSessionContext() *sessionContext {
	return SharedSessionContext
}

func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedSessionContext = &sessionContext{}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s := SharedSessionContext; s != nil && s.session != nil {
			s.session.Close()
		}
		SharedSessionContext = nil
		return c, nil
	})

	ctx.Step(`^a media session$`, aMediaSession)
	ctx.Step(`^I acquire a video at "([^"]*)"$`, iAcquireAVideoAt)
	ctx.Step(`^I acquire an image at "([^"]*)"$`, iAcquireAnImageAt)
	ctx.Step(`^I acquire a live photo with video "([^"]*)"$`, iAcquireALivePhotoWithVideo)
	ctx.Step(`^the engine fails to extract$`, theEngineFailsToExtract)
	ctx.Step(`^the engine fails to clean$`, theEngineFailsToClean)
	ctx.Step(`^I extract audio$`, iExtractAudio)
	ctx.Step(`^I clean audio$`, iCleanAudio)
	ctx.Step(`^the audio phase should be "([^"]*)"$`, theAudioPhaseShouldBe)
	ctx.Step(`^the current artifact should be "([^"]*)"$`, theCurrentArtifactShouldBe)
	ctx.Step(`^the current artifact should be a cleaned artifact$`, theCurrentArtifactShouldBeACleanedArtifact)
	ctx.Step(`^there should be no current artifact$`, thereShouldBeNoCurrentArtifact)
	ctx.Step(`^the engine should have written (\d+) distinct cleaned files$`, theEngineShouldHaveWrittenDistinctCleanedFiles)
	ctx.Step(`^the "([^"]*)" context artifact should be "([^"]*)"$`, theContextArtifactShouldBe)
	ctx.Step(`^the operation should fail with a "([^"]*)" error$`, theOperationShouldFailWithAError)

	ctx.Step(`^I press play$`, iPressPlay)
	ctx.Step(`^playback reaches the end$`, playbackReachesTheEnd)
	ctx.Step(`^I seek to (-?\d+) seconds$`, iSeekToSeconds)
	ctx.Step(`^I close the session$`, iCloseTheSession)
	ctx.Step(`^the player status should be "([^"]*)"$`, thePlayerStatusShouldBe)
	ctx.Step(`^the player position should be (\d+)$`, thePlayerPositionShouldBe)
	ctx.Step(`^the playback resource should have been released once$`, thePlaybackResourceShouldHaveBeenReleasedOnce)
	ctx.Step(`^the player should be playing a cleaned artifact$`, thePlayerShouldBePlayingACleanedArtifact)
}

func aMediaSession() error {
	s := getSessionContext()
	if s.session != nil {
		s.session.Close()
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s.acquirer = &fakeAcquirer{entities: map[media.Source]media.Entity{}}
	s.engine = newFakeEngine()
	s.provider = &fakeProvider{}
	s.session = session.New(session.Dependencies{
		Acquirer:     s.acquirer,
		Engine:       s.engine,
		Player:       s.provider,
		Exporter:     &fakeExporter{},
		PollInterval: 5 * time.Millisecond,
		Logger:       logger,
	})
	s.current = s.session.Media()
	s.err = nil
	return nil
}

func acquire(kind, path string, source media.Source) error {
	s := getSessionContext()
	entity, err := entityFor(kind, path)
	if err != nil {
		return err
	}
	s.acquirer.entities[source] = entity

	target := s.session.ContextFor(source)
	if _, err := target.Acquire(context.Background(), source); err != nil {
		return fmt.Errorf("acquire failed: %w", err)
	}
	s.current = target
	return nil
}

func iAcquireAVideoAt(path string) error {
	return acquire("video", path, media.SourceGallery)
}

func iAcquireAnImageAt(path string) error {
	return acquire("image", path, media.SourceCamera)
}

func iAcquireALivePhotoWithVideo(path string) error {
	return acquire("live photo", path, media.SourceLivePhoto)
}

func theEngineFailsToExtract() error {
	getSessionContext().engine.extractErr = errors.New("decoder crashed")
	return nil
}

func theEngineFailsToClean() error {
	getSessionContext().engine.cleanErr = errors.New("filter graph failed")
	return nil
}

func iExtractAudio() error {
	s := getSessionContext()
	_, s.err = s.current.Extract(context.Background())
	return nil
}

func iCleanAudio() error {
	s := getSessionContext()
	_, s.err = s.current.Clean(context.Background())
	return nil
}

func theAudioPhaseShouldBe(phase string) error {
	got := getSessionContext().current.Processor().State().Phase
	if string(got) != phase {
		return fmt.Errorf("expected phase %q, got %q", phase, got)
	}
	return nil
}

func theCurrentArtifactShouldBe(path string) error {
	return contextArtifactShouldBe(getSessionContext().current, path)
}

func contextArtifactShouldBe(c *session.Context, path string) error {
	artifact, ok := c.Processor().Current()
	if !ok {
		return fmt.Errorf("expected artifact %q, got none", path)
	}
	if artifact.Path != path {
		return fmt.Errorf("expected artifact %q, got %q", path, artifact.Path)
	}
	return nil
}

func theCurrentArtifactShouldBeACleanedArtifact() error {
	artifact, ok := getSessionContext().current.Processor().Current()
	if !ok {
		return fmt.Errorf("expected a cleaned artifact, got none")
	}
	if !artifact.Processed || !audio.IsCleanedPath(artifact.Path) {
		return fmt.Errorf("expected a cleaned artifact, got %+v", artifact)
	}
	return nil
}

func thereShouldBeNoCurrentArtifact() error {
	if artifact, ok := getSessionContext().current.Processor().Current(); ok {
		return fmt.Errorf("expected no artifact, got %q", artifact.Path)
	}
	return nil
}

func theEngineShouldHaveWrittenDistinctCleanedFiles(n int) error {
	cleaned := getSessionContext().engine.cleaned
	seen := map[string]bool{}
	for _, p := range cleaned {
		seen[p] = true
	}
	if len(cleaned) != n || len(seen) != n {
		return fmt.Errorf("expected %d distinct cleaned files, got %v", n, cleaned)
	}
	return nil
}

func theContextArtifactShouldBe(name, path string) error {
	s := getSessionContext()
	c := s.session.Media()
	if name == session.ContextLivePhoto {
		c = s.session.LivePhoto()
	}
	return contextArtifactShouldBe(c, path)
}

func theOperationShouldFailWithAError(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	err := getSessionContext().err
	if !errors.Is(err, want) {
		return fmt.Errorf("expected %q error, got %v", kind, err)
	}
	return nil
}

// --- playback ---

func iPressPlay() error {
	s := getSessionContext()
	s.err = s.current.PlayPause(context.Background())
	return nil
}

func playbackReachesTheEnd() error {
	h, err := getSessionContext().provider.last()
	if err != nil {
		return err
	}
	h.finish()
	return nil
}

func iSeekToSeconds(seconds int) error {
	s := getSessionContext()
	s.err = s.current.Player().Seek(float64(seconds))
	return s.err
}

func iCloseTheSession() error {
	getSessionContext().session.Close()
	return nil
}

// thePlayerStatusShouldBe waits briefly: natural completion is reported asynchronously
func thePlayerStatusShouldBe(status string) error {
	player := getSessionContext().current.Player()
	deadline := time.Now().Add(time.Second)
	for {
		got := player.State().Status
		if string(got) == status {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("expected player status %q, got %q", status, got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func thePlayerPositionShouldBe(seconds int) error {
	got := getSessionContext().current.Player().State().Position
	if got != float64(seconds) {
		return fmt.Errorf("expected position %d, got %.2f", seconds, got)
	}
	return nil
}

func thePlaybackResourceShouldHaveBeenReleasedOnce() error {
	h, err := getSessionContext().provider.last()
	if err != nil {
		return err
	}
	if n := h.releaseCount(); n != 1 {
		return fmt.Errorf("expected the resource to be released once, got %d", n)
	}
	return nil
}

func thePlayerShouldBePlayingACleanedArtifact() error {
	state := getSessionContext().current.Player().State()
	if state.Status != playback.StatusPlaying || state.Artifact == nil {
		return fmt.Errorf("expected playback, got %q", state.Status)
	}
	if !strings.Contains(state.Artifact.Path, "_cleaned_") {
		return fmt.Errorf("expected a cleaned artifact, got %q", state.Artifact.Path)
	}
	return nil
}
