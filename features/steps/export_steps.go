//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	appdistribution "livephoto-audio/application/distribution"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/history"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
)

type fakeSharer struct {
	url      string
	err      error
	requests []distribution.ShareRequest
}

func (s *fakeSharer) Share(ctx context.Context, req distribution.ShareRequest) (distribution.ShareResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return distribution.ShareResult{}, s.err
	}
	return distribution.ShareResult{URL: s.url}, nil
}

// exportContext holds test state for export scenarios
type exportContext struct {
	tempDir      string
	downloadsDir string
	artifact     audio.Artifact
	now          time.Time
	sharer       *fakeSharer
	ledger       *history.Ledger
	dest         distribution.Destination
	err          error
}

// SharedExportContext is reset before each scenario via Before hook
var SharedExportContext *exportContext

func getExportContext() *exportContext {
	return SharedExportContext
}

func InitializeExportScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "export-test-*")
		if err != nil {
			return c, err
		}
		ledger, err := history.Open(filepath.Join(tempDir, "history.db"))
		if err != nil {
			return c, err
		}
		SharedExportContext = &exportContext{
			tempDir:      tempDir,
			downloadsDir: filepath.Join(tempDir, "Downloads"),
			ledger:       ledger,
			now:          time.Now(),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if e := SharedExportContext; e != nil {
			e.ledger.Close()
			os.RemoveAll(e.tempDir)
		}
		SharedExportContext = nil
		return c, nil
	})

	ctx.Step(`^an audio artifact "([^"]*)"$`, anAudioArtifact)
	ctx.Step(`^the time is "([^"]*)"$`, theTimeIs)
	ctx.Step(`^the downloads directory already contains "([^"]*)"$`, theDownloadsDirectoryAlreadyContains)
	ctx.Step(`^a share target that returns "([^"]*)"$`, aShareTargetThatReturns)
	ctx.Step(`^a share target that the user dismisses$`, aShareTargetThatTheUserDismisses)
	ctx.Step(`^a share target that fails$`, aShareTargetThatFails)
	ctx.Step(`^I export the artifact$`, iExportTheArtifact)
	ctx.Step(`^the downloads directory should contain "([^"]*)"$`, theDownloadsDirectoryShouldContain)
	ctx.Step(`^the export destination should be "([^"]*)"$`, theExportDestinationShouldBe)
	ctx.Step(`^the share target should have received "([^"]*)" as "([^"]*)"$`, theShareTargetShouldHaveReceivedAs)
	ctx.Step(`^the export should be cancelled without an error$`, theExportShouldBeCancelledWithoutAnError)
	ctx.Step(`^the export should fail with an "([^"]*)" error$`, theExportShouldFailWithAnError)
	ctx.Step(`^the export history should have (\d+) "([^"]*)" entry$`, theExportHistoryShouldHaveEntry)
	ctx.Step(`^the export history should be empty$`, theExportHistoryShouldBeEmpty)
}

func anAudioArtifact(name string) error {
	e := getExportContext()
	path := filepath.Join(e.tempDir, name)
	content := []byte("not really audio")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return err
	}
	e.artifact = audio.Artifact{
		Path:            path,
		SizeBytes:       int64(len(content)),
		DurationSeconds: 3,
		Format:          "m4a",
		SampleRateHz:    44100,
	}
	return nil
}

func theTimeIs(value string) error {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return err
	}
	getExportContext().now = t
	return nil
}

func theDownloadsDirectoryAlreadyContains(name string) error {
	e := getExportContext()
	if err := os.MkdirAll(e.downloadsDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.downloadsDir, name), []byte("earlier export"), 0644)
}

func aShareTargetThatReturns(url string) error {
	getExportContext().sharer = &fakeSharer{url: url}
	return nil
}

func aShareTargetThatTheUserDismisses() error {
	getExportContext().sharer = &fakeSharer{err: media.ErrUserCancelled}
	return nil
}

func aShareTargetThatFails() error {
	getExportContext().sharer = &fakeSharer{err: errors.New("upload quota exceeded")}
	return nil
}

func iExportTheArtifact() error {
	e := getExportContext()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts := []appdistribution.ExportOption{
		appdistribution.WithClock(func() time.Time { return e.now }),
		appdistribution.WithLedger(e.ledger),
		appdistribution.WithLogger(logger),
	}
	if e.sharer != nil {
		opts = append(opts, appdistribution.WithSharer(e.sharer))
	}

	svc := appdistribution.NewExportService(filesystem.NewCopier(), filesystem.NewChecker(), e.downloadsDir, opts...)
	e.dest, e.err = svc.Export(context.Background(), e.artifact)
	return nil
}

func theDownloadsDirectoryShouldContain(name string) error {
	e := getExportContext()
	if e.err != nil {
		return fmt.Errorf("export failed: %w", e.err)
	}
	want := filepath.Join(e.downloadsDir, name)
	if e.dest.Path != want {
		return fmt.Errorf("expected destination %q, got %q", want, e.dest.Path)
	}
	if _, err := os.Stat(want); err != nil {
		return fmt.Errorf("expected %s to exist: %w", name, err)
	}
	return nil
}

func theExportDestinationShouldBe(url string) error {
	e := getExportContext()
	if e.err != nil {
		return fmt.Errorf("export failed: %w", e.err)
	}
	if e.dest.Method != distribution.MethodShared || e.dest.URL != url {
		return fmt.Errorf("expected shared destination %q, got %+v", url, e.dest)
	}
	return nil
}

func theShareTargetShouldHaveReceivedAs(name, mimeType string) error {
	reqs := getExportContext().sharer.requests
	if len(reqs) != 1 {
		return fmt.Errorf("expected 1 share request, got %d", len(reqs))
	}
	if reqs[0].SuggestedName != name || reqs[0].MimeType != mimeType {
		return fmt.Errorf("expected %s as %s, got %+v", name, mimeType, reqs[0])
	}
	return nil
}

func theExportShouldBeCancelledWithoutAnError() error {
	e := getExportContext()
	if e.err != nil {
		return fmt.Errorf("expected no error, got %w", e.err)
	}
	if !e.dest.Cancelled {
		return fmt.Errorf("expected a cancelled export, got %+v", e.dest)
	}
	return nil
}

func theExportShouldFailWithAnError(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if err := getExportContext().err; !errors.Is(err, want) {
		return fmt.Errorf("expected %q error, got %v", kind, err)
	}
	return nil
}

func theExportHistoryShouldHaveEntry(n int, method string) error {
	records, err := getExportContext().ledger.List(context.Background(), 0)
	if err != nil {
		return err
	}
	if len(records) != n {
		return fmt.Errorf("expected %d history entries, got %d", n, len(records))
	}
	for _, r := range records {
		if string(r.Method) != method {
			return fmt.Errorf("expected method %q, got %q", method, r.Method)
		}
	}
	return nil
}

func theExportHistoryShouldBeEmpty() error {
	return theExportHistoryShouldHaveEntry(0, "")
}
