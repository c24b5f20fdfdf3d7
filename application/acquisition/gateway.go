package acquisition

import (
	"context"
	"errors"
	"fmt"

	"livephoto-audio/domain/media"

	"github.com/sirupsen/logrus"
)

// Gateway acquires media through a permission provider and a picker and
// normalizes the raw result into a media.Entity.
//
// Acquire returns (nil, nil) when the user cancels the picker. Every other
// empty result carries an error: media.ErrPermissionDenied,
// media.ErrUnsupportedPlatform or media.ErrAcquisitionFailed.
type Gateway struct {
	permissions media.PermissionProvider
	picker      media.Picker
	logger      logrus.FieldLogger
	livePhoto   bool
	pickOptions media.PickOptions
}

// GatewayOption is a functional option for configuring Gateway
type GatewayOption func(*Gateway)

// WithLivePhotoSupport declares whether the platform can pick Live Photos
func WithLivePhotoSupport(supported bool) GatewayOption {
	return func(g *Gateway) {
		g.livePhoto = supported
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithPickOptions sets the filter and EXIF preference used for image and video picks.
// The source is always taken from the Acquire call.
func WithPickOptions(opts media.PickOptions) GatewayOption {
	return func(g *Gateway) {
		g.pickOptions = opts
	}
}

// NewGateway creates a new Gateway
func NewGateway(permissions media.PermissionProvider, picker media.Picker, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		permissions: permissions,
		picker:      picker,
		logger:      logrus.StandardLogger(),
		pickOptions: media.PickOptions{Filter: media.FilterAny},
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.logger.WithField("component", "acquisition")
	return g
}

// SupportsLivePhoto reports whether Live Photo acquisition is available
func (g *Gateway) SupportsLivePhoto() bool {
	return g.livePhoto
}

// Acquire obtains one media entity from source
func (g *Gateway) Acquire(ctx context.Context, source media.Source) (media.Entity, error) {
	if source == media.SourceLivePhoto && !g.livePhoto {
		return nil, fmt.Errorf("%w: live photos", media.ErrUnsupportedPlatform)
	}

	capability := source.Capability()
	granted, err := g.permissions.CheckOrRequest(ctx, capability)
	if err != nil {
		if errors.Is(err, media.ErrUserCancelled) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", media.ErrPermissionDenied, err)
	}
	if !granted {
		g.logger.WithField("capability", capability).Info("permission denied")
		return nil, fmt.Errorf("%w: %s", media.ErrPermissionDenied, capability)
	}

	log := g.logger.WithField("source", source)

	if source == media.SourceLivePhoto {
		raw, err := g.picker.PickLivePhoto(ctx)
		if err != nil {
			return g.pickFailed(log, err)
		}
		lp, err := media.FromRawLivePhoto(raw)
		if err != nil {
			log.WithError(err).Warn("picker returned an incomplete live photo")
			return nil, err
		}
		log.WithField("photo", lp.Photo.Path).Info("live photo acquired")
		return lp, nil
	}

	opts := g.pickOptions
	opts.Source = source
	if source == media.SourceRecord {
		opts.Filter = media.FilterVideos
	}
	if opts.Filter == "" {
		opts.Filter = media.FilterAny
	}

	raw, err := g.picker.PickImageOrVideo(ctx, opts)
	if err != nil {
		return g.pickFailed(log, err)
	}
	entity, err := media.FromRawPick(raw)
	if err != nil {
		log.WithError(err).Warn("picker returned a malformed result")
		return nil, err
	}

	kind, _ := media.Classify(entity)
	log.WithFields(logrus.Fields{"kind": kind, "path": entity.Common().Path}).Info("media acquired")
	return entity, nil
}

func (g *Gateway) pickFailed(log logrus.FieldLogger, err error) (media.Entity, error) {
	switch {
	case errors.Is(err, media.ErrUserCancelled):
		log.Debug("picker cancelled")
		return nil, nil
	case errors.Is(err, media.ErrPermissionDenied), errors.Is(err, media.ErrUnsupportedPlatform):
		return nil, err
	}
	log.WithError(err).Warn("picker failed")
	return nil, fmt.Errorf("%w: %w", media.ErrAcquisitionFailed, err)
}
