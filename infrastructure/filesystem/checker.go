package filesystem

import (
	"os"

	"livephoto-audio/domain/media"
)

// Checker implements media.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists. file:// URIs are accepted.
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(LocalPath(path))
	return err == nil
}

// Size returns the size of the file in bytes, or 0 if it cannot be read
func (c *Checker) Size(path string) int64 {
	info, err := os.Stat(LocalPath(path))
	if err != nil {
		return 0
	}
	return info.Size()
}

// Ensure Checker implements media.FileChecker
var _ media.FileChecker = (*Checker)(nil)
