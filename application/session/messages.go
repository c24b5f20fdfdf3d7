package session

import (
	"context"
	"errors"

	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/domain/playback"
)

// messages is ordered: wrapped errors match their most specific kind first
var messages = []struct {
	err error
	msg string
}{
	{media.ErrPermissionDenied, "Access was denied. Allow access to the camera or photo library to continue."},
	{media.ErrUnsupportedPlatform, "Live Photos are not supported on this device."},
	{media.ErrIncompleteLivePhoto, "That Live Photo is missing its photo or its video."},
	{media.ErrAcquisitionFailed, "The selected media could not be read."},
	{media.ErrInvalidMedia, "This media has no video to extract audio from."},
	{audio.ErrOperationInProgress, "Please wait for the current audio operation to finish."},
	{audio.ErrExtractionFailed, "Audio could not be extracted from this video."},
	{audio.ErrCleaningFailed, "Audio cleaning failed. The previous audio is still available."},
	{audio.ErrNoArtifact, "Extract audio first."},
	{audio.ErrInvalidArtifact, "The audio engine returned an unusable result."},
	{playback.ErrLoadFailed, "The audio could not be opened for playback."},
	{playback.ErrNotLoaded, "No audio is loaded for playback."},
	{playback.ErrDisposed, "The player has been closed."},
	{distribution.ErrExportFailed, "The audio could not be exported."},
	{context.DeadlineExceeded, "The operation timed out."},
}

// UserMessage returns the text to show for err. show is false for outcomes
// the user chose, such as cancelling a picker or share sheet.
func UserMessage(err error) (msg string, show bool) {
	if err == nil || errors.Is(err, media.ErrUserCancelled) || errors.Is(err, context.Canceled) {
		return "", false
	}

	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "Something went wrong: " + err.Error(), true
}
