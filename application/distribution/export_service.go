package distribution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"

	"github.com/sirupsen/logrus"
)

// maxNameAttempts bounds the search for a free destination name
const maxNameAttempts = 100

// ExportService hands an artifact to a share target or copies it into the
// downloads directory.
type ExportService struct {
	copier       distribution.FileCopier
	fileChecker  media.FileChecker
	downloadsDir string
	sharer       distribution.Sharer
	ledger       distribution.ExportLedger
	now          func() time.Time
	logger       logrus.FieldLogger
}

// ExportOption is a functional option for configuring ExportService
type ExportOption func(*ExportService)

// WithSharer makes the service share instead of copy
func WithSharer(sharer distribution.Sharer) ExportOption {
	return func(s *ExportService) {
		s.sharer = sharer
	}
}

// WithLedger records every completed export
func WithLedger(ledger distribution.ExportLedger) ExportOption {
	return func(s *ExportService) {
		s.ledger = ledger
	}
}

// WithClock sets the clock used for destination names (for testing)
func WithClock(now func() time.Time) ExportOption {
	return func(s *ExportService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ExportOption {
	return func(s *ExportService) {
		s.logger = logger
	}
}

// NewExportService creates a new ExportService
func NewExportService(copier distribution.FileCopier, fileChecker media.FileChecker, downloadsDir string, opts ...ExportOption) *ExportService {
	s := &ExportService{
		copier:       copier,
		fileChecker:  fileChecker,
		downloadsDir: downloadsDir,
		now:          time.Now,
		logger:       logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.WithField("component", "export")
	return s
}

// Shares reports whether exports go to a share target
func (s *ExportService) Shares() bool {
	return s.sharer != nil
}

// Export shares or copies artifact. A dismissed share sheet is a successful
// no-op; only I/O failures are returned, wrapped in ErrExportFailed.
func (s *ExportService) Export(ctx context.Context, artifact audio.Artifact) (distribution.Destination, error) {
	if err := artifact.Validate(); err != nil {
		return distribution.Destination{}, fmt.Errorf("%w: %w", distribution.ErrExportFailed, err)
	}

	var (
		dest distribution.Destination
		err  error
	)
	if s.sharer != nil {
		dest, err = s.share(ctx, artifact)
	} else {
		dest, err = s.copy(ctx, artifact)
	}
	if err != nil || dest.Cancelled {
		return dest, err
	}

	s.record(ctx, artifact, dest)
	return dest, nil
}

func (s *ExportService) share(ctx context.Context, artifact audio.Artifact) (distribution.Destination, error) {
	format := artifact.Format
	if format == "" {
		format = filepath.Ext(artifact.Path)
	}

	req := distribution.ShareRequest{
		Path:          artifact.Path,
		MimeType:      distribution.MimeTypeForFormat(format),
		SuggestedName: artifact.Filename(),
	}

	res, err := s.sharer.Share(ctx, req)
	if errors.Is(err, media.ErrUserCancelled) {
		s.logger.WithField("path", artifact.Path).Debug("share cancelled")
		return distribution.Destination{Method: distribution.MethodShared, Cancelled: true}, nil
	}
	if err != nil {
		s.logger.WithError(err).WithField("path", artifact.Path).Warn("share failed")
		return distribution.Destination{}, fmt.Errorf("%w: %w", distribution.ErrExportFailed, err)
	}

	s.logger.WithFields(logrus.Fields{"path": artifact.Path, "url": res.URL}).Info("artifact shared")
	return distribution.Destination{Method: distribution.MethodShared, URL: res.URL}, nil
}

func (s *ExportService) copy(ctx context.Context, artifact audio.Artifact) (distribution.Destination, error) {
	if s.downloadsDir == "" {
		return distribution.Destination{}, fmt.Errorf("%w: no downloads directory configured", distribution.ErrExportFailed)
	}

	dst, err := s.destinationPath(artifact.Path)
	if err != nil {
		return distribution.Destination{}, err
	}

	if err := s.copier.Copy(ctx, artifact.Path, dst); err != nil {
		s.logger.WithError(err).WithField("destination", dst).Warn("copy failed")
		return distribution.Destination{}, fmt.Errorf("%w: %w", distribution.ErrExportFailed, err)
	}

	s.logger.WithField("destination", dst).Info("artifact copied")
	return distribution.Destination{Method: distribution.MethodCopied, Path: dst}, nil
}

// destinationPath picks a timestamped name in the downloads directory that
// does not exist yet
func (s *ExportService) destinationPath(artifactPath string) (string, error) {
	at := s.now()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := filepath.Join(s.downloadsDir, distribution.DestinationFilename(artifactPath, at, attempt))
		if !s.fileChecker.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free file name for %s in %s", distribution.ErrExportFailed, filepath.Base(artifactPath), s.downloadsDir)
}

func (s *ExportService) record(ctx context.Context, artifact audio.Artifact, dest distribution.Destination) {
	if s.ledger == nil {
		return
	}

	target := dest.Path
	if dest.Method == distribution.MethodShared {
		target = dest.URL
	}

	rec := distribution.ExportRecord{
		ArtifactPath: artifact.Path,
		Method:       dest.Method,
		Destination:  target,
		SizeBytes:    artifact.SizeBytes,
		ExportedAt:   s.now(),
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("failed to record export")
	}
}
