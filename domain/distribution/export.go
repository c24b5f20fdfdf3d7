package distribution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrExportFailed is returned when an artifact cannot be copied or shared.
// User cancellation is never reported with it.
var ErrExportFailed = errors.New("export failed")

// Method is how an artifact left the app
type Method string

const (
	MethodShared Method = "shared"
	MethodCopied Method = "copied"
)

// Destination describes where an exported artifact ended up
type Destination struct {
	Method Method
	// Path is the copy's location on disk (MethodCopied)
	Path string
	// URL is the link returned by the share target, if any (MethodShared)
	URL string
	// Cancelled is true when the user dismissed the share sheet
	Cancelled bool
}

// String implements fmt.Stringer
func (d Destination) String() string {
	switch {
	case d.Cancelled:
		return "share cancelled"
	case d.Method == MethodCopied:
		return d.Path
	case d.URL != "":
		return d.URL
	default:
		return string(d.Method)
	}
}

// ShareRequest is handed to a share target
type ShareRequest struct {
	Path          string
	MimeType      string
	SuggestedName string
}

// ShareResult is what a share target reports back
type ShareResult struct {
	URL string
}

// Sharer is a native share sheet. Implementations return media.ErrUserCancelled
// when the user dismisses it.
type Sharer interface {
	Share(ctx context.Context, req ShareRequest) (ShareResult, error)
}

// FileCopier copies a file to a new location
type FileCopier interface {
	Copy(ctx context.Context, src, dst string) error
}

// ExportRecord is one completed export
type ExportRecord struct {
	ArtifactPath string
	Method       Method
	Destination  string
	SizeBytes    int64
	ExportedAt   time.Time
}

// ExportLedger keeps a record of completed exports
type ExportLedger interface {
	Record(ctx context.Context, rec ExportRecord) error
}

// TimestampLayout is the suffix layout used for exported file names
const TimestampLayout = "20060102-150405"

// DestinationFilename returns "<stem>_<timestamp><ext>" for an artifact path.
// attempt > 0 appends "-<attempt>" to step around an existing file.
func DestinationFilename(artifactPath string, at time.Time, attempt int) string {
	base := filepath.Base(artifactPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s_%s", stem, at.Format(TimestampLayout))
	if attempt > 0 {
		name = fmt.Sprintf("%s-%d", name, attempt)
	}
	return name + ext
}
