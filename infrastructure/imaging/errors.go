package imaging

import "errors"

// ErrUnavailable is returned when the binary was built without OpenCV
var ErrUnavailable = errors.New("image decoding not available: build with '-tags=opencv' and install OpenCV/GoCV")
