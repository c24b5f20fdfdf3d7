//go:build !opencv

package imaging

// Reader is a stub when GoCV/OpenCV is not available
type Reader struct{}

// NewReader creates a stub reader (requires building with -tags=opencv)
func NewReader() *Reader {
	return &Reader{}
}

// Available reports whether image decoding is compiled in
func (r *Reader) Available() bool {
	return false
}

// Dimensions returns ErrUnavailable
func (r *Reader) Dimensions(path string) (int, int, error) {
	return 0, 0, ErrUnavailable
}
