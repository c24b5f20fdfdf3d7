package prompt

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"livephoto-audio/domain/media"
	"livephoto-audio/infrastructure/ffmpeg"
	"livephoto-audio/infrastructure/filesystem"
)

// MetadataProber reads media metadata (allows mocking ffprobe in tests)
type MetadataProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.ProbeInfo, error)
}

// DimensionReader reads still image dimensions
type DimensionReader interface {
	Available() bool
	Dimensions(path string) (int, int, error)
}

// livePhotoVideoExts are tried, in order, to find the motion part of a Live Photo
var livePhotoVideoExts = []string{".MOV", ".mov", ".MP4", ".mp4"}

var sourcePrompts = map[media.Source]string{
	media.SourceCamera:  "Path of the captured photo or video:",
	media.SourceGallery: "Path of the image or video:",
	media.SourceRecord:  "Path of the recorded video:",
}

// Picker asks for file paths and reads their metadata the way a native
// picker would report it. It implements media.Picker. An empty answer
// cancels the pick.
type Picker struct {
	prompter Prompter
	prober   MetadataProber
	images   DimensionReader
}

// PickerOption is a functional option for configuring Picker
type PickerOption func(*Picker)

// WithDimensionReader sets the reader used for still images ffprobe cannot size
func WithDimensionReader(r DimensionReader) PickerOption {
	return func(p *Picker) {
		p.images = r
	}
}

// NewPicker creates a new Picker
func NewPicker(prompter Prompter, prober MetadataProber, opts ...PickerOption) *Picker {
	p := &Picker{prompter: prompter, prober: prober}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PickImageOrVideo implements media.Picker
func (p *Picker) PickImageOrVideo(ctx context.Context, opts media.PickOptions) (media.RawPick, error) {
	message, ok := sourcePrompts[opts.Source]
	if !ok {
		message = sourcePrompts[media.SourceGallery]
	}

	path, err := p.askPath(message, "")
	if err != nil {
		return media.RawPick{}, err
	}

	mimeType := mimeTypeFor(path)
	kind := media.ClassifyMime(media.String(mimeType))
	switch {
	case opts.Filter == media.FilterVideos && kind != media.KindVideo:
		return media.RawPick{}, fmt.Errorf("%s is not a video", filepath.Base(path))
	case opts.Filter == media.FilterImages && kind != media.KindImage:
		return media.RawPick{}, fmt.Errorf("%s is not an image", filepath.Base(path))
	}

	raw := media.RawPick{
		Path:     path,
		MimeType: mimeType,
		Filename: filepath.Base(path),
	}

	info, statErr := os.Stat(path)
	if statErr == nil {
		size := info.Size()
		modified := info.ModTime().Unix()
		raw.SizeBytes = &size
		raw.Modified = &modified
	}

	if probe, err := p.prober.Probe(ctx, path); err == nil {
		if probe.Width > 0 && probe.Height > 0 {
			w, h := probe.Width, probe.Height
			raw.Width, raw.Height = &w, &h
		}
		if kind == media.KindVideo && probe.Duration > 0 {
			ms := int64(probe.Duration * 1000)
			raw.DurationMs = &ms
		}
		if probe.CreationTime != nil {
			created := probe.CreationTime.Unix()
			raw.Created = &created
		}
		if opts.IncludeExif && kind == media.KindImage {
			raw.Exif = exifFromProbe(probe)
		}
	}

	if kind == media.KindImage && raw.Width == nil {
		if w, h, ok := p.imageDimensions(path); ok {
			raw.Width, raw.Height = &w, &h
		}
	}

	return raw, nil
}

// PickLivePhoto implements media.Picker. The video defaults to the file next
// to the still with the same name, the way Live Photos are exported.
func (p *Picker) PickLivePhoto(ctx context.Context) (media.RawLivePhoto, error) {
	photoPath, err := p.askPath("Path of the Live Photo still (HEIC/JPEG):", "")
	if err != nil {
		return media.RawLivePhoto{}, err
	}

	// An interrupt here still cancels; an empty answer leaves the still alone
	answer, err := p.prompter.Input("Path of the Live Photo video:", companionVideo(photoPath))
	if err != nil {
		return media.RawLivePhoto{}, err
	}
	if strings.TrimSpace(answer) == "" {
		return media.RawLivePhoto{}, fmt.Errorf("%w: no video given for %s", media.ErrIncompleteLivePhoto, filepath.Base(photoPath))
	}
	videoPath, err := resolvePath(answer)
	if err != nil {
		return media.RawLivePhoto{}, err
	}

	raw := media.RawLivePhoto{
		PhotoPath:       photoPath,
		PhotoMime:       mimeTypeFor(photoPath),
		PhotoFilename:   filepath.Base(photoPath),
		VideoPath:       videoPath,
		VideoMime:       mimeTypeFor(videoPath),
		VideoFilename:   filepath.Base(videoPath),
		LocalIdentifier: strings.TrimSuffix(filepath.Base(photoPath), filepath.Ext(photoPath)),
	}

	if info, err := os.Stat(photoPath); err == nil {
		raw.Modified = info.ModTime().Unix()
	}

	if probe, err := p.prober.Probe(ctx, videoPath); err == nil {
		raw.DurationSeconds = probe.Duration
		if probe.CreationTime != nil {
			raw.Created = probe.CreationTime.Unix()
		}
		raw.PixelWidth, raw.PixelHeight = probe.Width, probe.Height
	}

	if probe, err := p.prober.Probe(ctx, photoPath); err == nil && probe.Width > 0 && probe.Height > 0 {
		raw.PixelWidth, raw.PixelHeight = probe.Width, probe.Height
	} else if w, h, ok := p.imageDimensions(photoPath); ok {
		raw.PixelWidth, raw.PixelHeight = w, h
	}

	if raw.Created == 0 {
		raw.Created = raw.Modified
	}
	return raw, nil
}

// askPath prompts for an existing file. An empty answer is a cancellation.
func (p *Picker) askPath(message, defaultValue string) (string, error) {
	answer, err := p.prompter.Input(message, defaultValue)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", media.ErrUserCancelled
	}
	return resolvePath(answer)
}

// resolvePath turns an answer into a local path of an existing regular file
func resolvePath(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	path := filesystem.ExpandHome(filesystem.LocalPath(answer))
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", answer, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", answer)
	}
	return path, nil
}

func (p *Picker) imageDimensions(path string) (int, int, bool) {
	if p.images == nil || !p.images.Available() {
		return 0, 0, false
	}
	w, h, err := p.images.Dimensions(path)
	if err != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func companionVideo(photoPath string) string {
	stem := strings.TrimSuffix(photoPath, filepath.Ext(photoPath))
	for _, ext := range livePhotoVideoExts {
		if _, err := os.Stat(stem + ext); err == nil {
			return stem + ext
		}
	}
	return ""
}

// knownMimeTypes covers camera formats the platform mime table may not know
var knownMimeTypes = map[string]string{
	".heic": "image/heic",
	".heif": "image/heif",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

// mimeTypeFor guesses a mime type from the extension. Unknown extensions
// yield "" so the entity keeps an absent mime type.
func mimeTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := knownMimeTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	return t
}

func exifFromProbe(probe *ffmpeg.ProbeInfo) map[string]any {
	exif := map[string]any{}
	if probe.Width > 0 {
		exif["PixelXDimension"] = probe.Width
		exif["PixelYDimension"] = probe.Height
	}
	if probe.CreationTime != nil {
		exif["DateTimeOriginal"] = probe.CreationTime.Format("2006:01:02 15:04:05")
	}
	if len(exif) == 0 {
		return nil
	}
	return exif
}

// Ensure Picker implements media.Picker
var _ media.Picker = (*Picker)(nil)
