//go:build !gocv

package vision

import "errors"

// NewGocvBackend reports that OpenCV support was not compiled in. Build with
// -tags gocv to enable it.
func NewGocvBackend() (Backend, error) {
	return nil, errors.New("gocv vision backend requires building with -tags gocv")
}
