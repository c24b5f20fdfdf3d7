//go:build opencv

package imaging

import (
	"fmt"
	"os"

	"livephoto-audio/infrastructure/filesystem"

	"gocv.io/x/gocv"
)

// Reader reads still image dimensions with GoCV
type Reader struct{}

// NewReader creates a new GoCV image reader
func NewReader() *Reader {
	return &Reader{}
}

// Available reports whether image decoding is compiled in
func (r *Reader) Available() bool {
	return true
}

// Dimensions returns the pixel width and height of the image at path
func (r *Reader) Dimensions(path string) (int, int, error) {
	local := filesystem.LocalPath(path)
	if _, err := os.Stat(local); err != nil {
		return 0, 0, fmt.Errorf("image not found: %w", err)
	}

	mat := gocv.IMRead(local, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return 0, 0, fmt.Errorf("failed to decode image: %s", path)
	}

	return mat.Cols(), mat.Rows(), nil
}
