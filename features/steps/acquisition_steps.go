//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"

	"livephoto-audio/application/acquisition"
	"livephoto-audio/domain/media"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
)

type fakePermissions struct {
	granted map[media.Capability]bool
}

func (p *fakePermissions) CheckOrRequest(ctx context.Context, capability media.Capability) (bool, error) {
	return p.granted[capability], nil
}

type fakePicker struct {
	pick      media.RawPick
	livePhoto media.RawLivePhoto
	err       error
	opened    int
	lastOpts  media.PickOptions
}

func (p *fakePicker) PickImageOrVideo(ctx context.Context, opts media.PickOptions) (media.RawPick, error) {
	p.opened++
	p.lastOpts = opts
	return p.pick, p.err
}

func (p *fakePicker) PickLivePhoto(ctx context.Context) (media.RawLivePhoto, error) {
	p.opened++
	return p.livePhoto, p.err
}

// acquisitionContext holds test state for acquisition scenarios
type acquisitionContext struct {
	permissions *fakePermissions
	picker      *fakePicker
	livePhoto   bool
	entity      media.Entity
	err         error
}

// SharedAcquisitionContext is reset before each scenario via Before hook
var SharedAcquisitionContext *acquisitionContext

func getAcquisitionContext() *acquisitionContext {
	return SharedAcquisitionContext
}

func InitializeAcquisitionScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedAcquisitionContext = &acquisitionContext{
			permissions: &fakePermissions{granted: map[media.Capability]bool{}},
			picker:      &fakePicker{},
			livePhoto:   true,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedAcquisitionContext = nil
		return c, nil
	})

	ctx.Step(`^camera and photo library access are granted$`, cameraAndPhotoLibraryAccessAreGranted)
	ctx.Step(`^camera access is denied$`, cameraAccessIsDenied)
	ctx.Step(`^Live Photos are not supported$`, livePhotosAreNotSupported)
	ctx.Step(`^the picker returns "([^"]*)" with type "([^"]*)"$`, thePickerReturnsWithType)
	ctx.Step(`^the Live Photo picker returns photo "([^"]*)" and video "([^"]*)"$`, theLivePhotoPickerReturnsPhotoAndVideo)
	ctx.Step(`^the user cancels the picker$`, theUserCancelsThePicker)
	ctx.Step(`^I acquire from the "([^"]*)"$`, iAcquireFromThe)
	ctx.Step(`^a "([^"]*)" should be acquired at "([^"]*)"$`, aShouldBeAcquiredAt)
	ctx.Step(`^the picker should have been asked for "([^"]*)"$`, thePickerShouldHaveBeenAskedFor)
	ctx.Step(`^nothing should be acquired$`, nothingShouldBeAcquired)
	ctx.Step(`^no error should be reported$`, noErrorShouldBeReported)
	ctx.Step(`^the acquisition should fail with a "([^"]*)" error$`, theAcquisitionShouldFailWithAError)
	ctx.Step(`^the picker should not have been opened$`, thePickerShouldNotHaveBeenOpened)
}

func cameraAndPhotoLibraryAccessAreGranted() error {
	a := getAcquisitionContext()
	a.permissions.granted[media.CapabilityCamera] = true
	a.permissions.granted[media.CapabilityPhotoLibrary] = true
	return nil
}

func cameraAccessIsDenied() error {
	getAcquisitionContext().permissions.granted[media.CapabilityCamera] = false
	return nil
}

func livePhotosAreNotSupported() error {
	getAcquisitionContext().livePhoto = false
	return nil
}

func thePickerReturnsWithType(path, mimeType string) error {
	getAcquisitionContext().picker.pick = media.RawPick{Path: path, MimeType: mimeType}
	return nil
}

func theLivePhotoPickerReturnsPhotoAndVideo(photo, video string) error {
	getAcquisitionContext().picker.livePhoto = media.RawLivePhoto{PhotoPath: photo, VideoPath: video}
	return nil
}

func theUserCancelsThePicker() error {
	getAcquisitionContext().picker.err = media.ErrUserCancelled
	return nil
}

func iAcquireFromThe(name string) error {
	a := getAcquisitionContext()
	source, ok := media.ParseSource(name)
	if !ok {
		return fmt.Errorf("unknown source %q", name)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	gateway := acquisition.NewGateway(a.permissions, a.picker,
		acquisition.WithLivePhotoSupport(a.livePhoto),
		acquisition.WithLogger(logger),
	)

	a.entity, a.err = gateway.Acquire(context.Background(), source)
	return nil
}

func aShouldBeAcquiredAt(kind, path string) error {
	a := getAcquisitionContext()
	if a.err != nil {
		return fmt.Errorf("unexpected error: %w", a.err)
	}
	if a.entity == nil {
		return fmt.Errorf("expected a %s, nothing was acquired", kind)
	}
	if string(a.entity.Kind()) != kind {
		return fmt.Errorf("expected a %s, got a %s", kind, a.entity.Kind())
	}
	if got := a.entity.Common().Path; got != path {
		return fmt.Errorf("expected path %q, got %q", path, got)
	}
	return nil
}

func thePickerShouldHaveBeenAskedFor(filter string) error {
	got := getAcquisitionContext().picker.lastOpts.Filter
	if string(got) != filter {
		return fmt.Errorf("expected filter %q, got %q", filter, got)
	}
	return nil
}

func nothingShouldBeAcquired() error {
	if e := getAcquisitionContext().entity; e != nil {
		return fmt.Errorf("expected nothing, got a %s", e.Kind())
	}
	return nil
}

func noErrorShouldBeReported() error {
	if err := getAcquisitionContext().err; err != nil {
		return fmt.Errorf("expected no error, got %w", err)
	}
	return nil
}

func theAcquisitionShouldFailWithAError(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if err := getAcquisitionContext().err; !errors.Is(err, want) {
		return fmt.Errorf("expected %q error, got %v", kind, err)
	}
	return nil
}

func thePickerShouldNotHaveBeenOpened() error {
	if n := getAcquisitionContext().picker.opened; n != 0 {
		return fmt.Errorf("expected the picker to stay closed, it was opened %d times", n)
	}
	return nil
}
