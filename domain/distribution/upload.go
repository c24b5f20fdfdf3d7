package distribution

import "strings"

// UploadRequest contains the parameters needed to upload a file to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID       string // Google Drive file ID
	FileName     string // Name of the uploaded file
	ShareableURL string // URL for sharing the file
	Size         int64  // Size of the uploaded file in bytes
}

// MIME type constants for the audio containers the engine produces
const (
	MimeTypeM4A  = "audio/mp4"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeWAV  = "audio/wav"
	MimeTypeAAC  = "audio/aac"
	MimeTypeOGG  = "audio/ogg"
	MimeTypeFLAC = "audio/flac"
	MimeTypeAny  = "application/octet-stream"
)

// MimeTypeForFormat returns the MIME type for an audio container extension
func MimeTypeForFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "m4a", "mp4":
		return MimeTypeM4A
	case "mp3":
		return MimeTypeMP3
	case "wav":
		return MimeTypeWAV
	case "aac":
		return MimeTypeAAC
	case "ogg", "opus":
		return MimeTypeOGG
	case "flac":
		return MimeTypeFLAC
	default:
		return MimeTypeAny
	}
}

// IsAudioMimeType reports whether mimeType is one of the audio types above
func IsAudioMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/")
}
