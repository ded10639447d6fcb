package analyzer

import (
	"image"

	"github.com/disintegration/imaging"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// ImageAsset is a decoded image normalised to an 8-bit non-premultiplied
// raster together with the size of its encoded form. An asset is never
// modified after construction and may be shared between goroutines.
type ImageAsset struct {
	img      *image.NRGBA
	byteSize int64
	format   string
}

// NewImageAsset copies src into an 8-bit raster. byteSize is the length of
// the encoded payload the image was decoded from.
func NewImageAsset(src image.Image, byteSize int64, format string) (*ImageAsset, error) {
	if src == nil {
		return nil, apperrors.NewDegenerateImageError(0, 0)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, apperrors.NewDegenerateImageError(b.Dx(), b.Dy())
	}
	return &ImageAsset{
		img:      imaging.Clone(src),
		byteSize: byteSize,
		format:   format,
	}, nil
}

func (a *ImageAsset) Width() int  { return a.img.Rect.Dx() }
func (a *ImageAsset) Height() int { return a.img.Rect.Dy() }

// PixelCount returns width*height.
func (a *ImageAsset) PixelCount() int { return a.Width() * a.Height() }

// ByteSize returns the encoded size in bytes.
func (a *ImageAsset) ByteSize() int64 { return a.byteSize }


// Format is the decoder name reported by image.Decode, e.g. "jpeg".
func (a *ImageAsset) Format() string { return a.format }

// Image exposes the raster. Callers must not modify it.
func (a *ImageAsset) Image() *image.NRGBA { return a.img }
