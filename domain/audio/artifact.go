package audio

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Artifact is an audio file produced by extraction or cleaning.
// Artifacts are values: cleaning produces a new one instead of mutating the old.
type Artifact struct {
	Path            string
	SizeBytes       int64
	DurationSeconds float64
	Format          string
	SampleRateHz    int
	Processed       bool
}

// Validate checks the artifact invariants
func (a Artifact) Validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidArtifact)
	}
	if a.SizeBytes < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidArtifact, a.SizeBytes)
	}
	if a.DurationSeconds < 0 {
		return fmt.Errorf("%w: negative duration %.3f", ErrInvalidArtifact, a.DurationSeconds)
	}
	if a.SampleRateHz <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArtifact, a.SampleRateHz)
	}
	return nil
}

// Filename returns the base name of the artifact path
func (a Artifact) Filename() string {
	return filepath.Base(a.Path)
}

// Cleaned returns the artifact produced by a cleaning pass over a.
// Metadata the engine did not report is carried over from a.
func (a Artifact) Cleaned(res CleanResult) Artifact {
	out := a
	out.Path = res.Path
	out.Processed = true
	if res.SizeBytes != nil {
		out.SizeBytes = *res.SizeBytes
	}
	if res.DurationSeconds != nil {
		out.DurationSeconds = *res.DurationSeconds
	}
	if res.Format != nil && *res.Format != "" {
		out.Format = *res.Format
	}
	if res.SampleRateHz != nil && *res.SampleRateHz > 0 {
		out.SampleRateHz = *res.SampleRateHz
	}
	return out
}

// cleanedSuffixRegex matches a previous cleaning pass suffix at the end of a stem
var cleanedSuffixRegex = regexp.MustCompile(`_cleaned_\d+$`)

// CleanedPath derives the output path of a cleaning pass from its input path.
// "/a.m4a" becomes "/a_cleaned_<stamp>.m4a"; a suffix from an earlier pass is
// replaced rather than stacked, so repeated passes stay readable.
func CleanedPath(inputPath string, stamp int64) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	stem = cleanedSuffixRegex.ReplaceAllString(stem, "")
	return fmt.Sprintf("%s_cleaned_%d%s", stem, stamp, ext)
}

// IsCleanedPath reports whether path carries the suffix of a cleaning pass
func IsCleanedPath(path string) bool {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return cleanedSuffixRegex.MatchString(stem)
}
