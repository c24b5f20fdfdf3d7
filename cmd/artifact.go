package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"livephoto-audio/domain/audio"
	"livephoto-audio/infrastructure/filesystem"
	"livephoto-audio/infrastructure/prompt"
)

// artifactFromFile reads an audio file on disk into an artifact
func artifactFromFile(ctx context.Context, prober prompt.MetadataProber, path string) (audio.Artifact, error) {
	info, err := prober.Probe(ctx, filesystem.LocalPath(path))
	if err != nil {
		return audio.Artifact{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !info.HasAudio {
		return audio.Artifact{}, fmt.Errorf("%w: %s has no audio stream", audio.ErrInvalidArtifact, path)
	}

	artifact := audio.Artifact{
		Path:            path,
		SizeBytes:       info.SizeBytes,
		DurationSeconds: info.Duration,
		Format:          strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		SampleRateHz:    info.SampleRateHz,
		Processed:       audio.IsCleanedPath(path),
	}
	if err := artifact.Validate(); err != nil {
		return audio.Artifact{}, err
	}
	return artifact, nil
}
