package audio

import "errors"

var (
	// ErrOperationInProgress is returned when an extraction or cleaning is already running
	ErrOperationInProgress = errors.New("an audio operation is already in progress")

	// ErrExtractionFailed is returned when the engine fails to extract audio
	ErrExtractionFailed = errors.New("audio extraction failed")

	// ErrCleaningFailed is returned when the engine fails to clean audio
	ErrCleaningFailed = errors.New("audio cleaning failed")

	// ErrNoArtifact is returned when cleaning is requested before anything was extracted
	ErrNoArtifact = errors.New("no audio has been extracted yet")

	// ErrInvalidArtifact is returned when an engine result breaks an artifact invariant
	ErrInvalidArtifact = errors.New("invalid audio artifact")
)
