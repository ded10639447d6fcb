package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
	"github.com/anime-shed/folkart-inspector/internal/storage"
	"github.com/anime-shed/folkart-inspector/pkg/models"
	"github.com/anime-shed/folkart-inspector/pkg/validation"
)

// DefaultMaxImagePixels bounds the raster a payload may declare.
const DefaultMaxImagePixels = 50_000_000

// imageRepository implements ImageRepository on top of a single fetcher
type imageRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
	maxPixels int64
}

// NewImageRepository creates a repository that validates references with
// validator and reads them through fetcher. Images declaring more than
// maxPixels pixels are rejected before decoding; a non-positive value means
// DefaultMaxImagePixels.
func NewImageRepository(fetcher storage.ImageFetcher, validator *validation.URLValidator, maxPixels int64) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	return &imageRepository{
		fetcher:   fetcher,
		validator: validator,
		maxPixels: maxPixels,
	}
}

func (r *imageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}

func (r *imageRepository) LoadImage(ctx context.Context, imageURL string) (*LoadedImage, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	raw, err := r.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("image fetch timed out", err)
		}
		return nil, apperrors.NewFetchError("failed to fetch image", err)
	}

	return DecodeImage(raw, r.maxPixels)
}

// DecodeImage turns a fetched payload into an asset. Bytes that no
// registered decoder accepts are a decode error, as is a header declaring
// more than maxPixels pixels (checked before the raster is allocated; a
// non-positive maxPixels disables the check). A zero-area raster is a
// degenerate image error.
func DecodeImage(raw *storage.RawImage, maxPixels int64) (*LoadedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw.Data))
	if err != nil {
		return nil, apperrors.NewDecodeError("payload is not a decodable image", err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("image dimensions %dx%d exceed the %d pixel limit", cfg.Width, cfg.Height, maxPixels), nil)
	}

	img, format, err := image.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return nil, apperrors.NewDecodeError("payload is not a decodable image", err)
	}

	asset, err := analyzer.NewImageAsset(img, int64(len(raw.Data)), format)
	if err != nil {
		return nil, err
	}

	provenance := models.Provenance{
		Source:         raw.Source,
		Format:         format,
		ContentType:    raw.ContentType,
		ByteSize:       asset.ByteSize(),
		Width:          asset.Width(),
		Height:         asset.Height(),
		PerceptualHash: perceptualHash(asset.Image()),
	}
	readEmbeddedMetadata(raw.Data, format, &provenance)

	return &LoadedImage{Asset: asset, Provenance: provenance}, nil
}
