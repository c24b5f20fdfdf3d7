package distribution

import "errors"

// ErrInsufficientStorage is returned when deleting every older share still
// leaves too little room for an upload
var ErrInsufficientStorage = errors.New("insufficient Drive storage")

// CleanupResult contains information about files deleted to make room for an upload
type CleanupResult struct {
	DeletedFiles []DeletedFile
	FreedBytes   int64
}

// DeletedFile represents a file that was deleted
type DeletedFile struct {
	Name string
	Size int64
}
