package analyzer

import (
	"fmt"
	"math/rand"

	"github.com/disintegration/imaging"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// paletteExtractor downsamples an asset and clusters its pixels in RGB.
type paletteExtractor struct {
	sampleSize int
	config     kmeansConfig
}

// NewPaletteExtractor creates a palette extractor from the analysis options
func NewPaletteExtractor(options AnalysisOptions) PaletteExtractor {
	return &paletteExtractor{
		sampleSize: options.PaletteSampleSize,
		config: kmeansConfig{
			k:         options.PaletteColors,
			restarts:  options.KMeansRestarts,
			maxIter:   options.KMeansMaxIter,
			tolerance: options.KMeansTolerance,
		},
	}
}

// Palette returns the cluster centres of the resampled asset as lowercase
// #rrggbb strings. The same asset and seed always yield the same palette.
func (pe *paletteExtractor) Palette(asset *ImageAsset, seed int64) ([]string, error) {
	if asset == nil || asset.PixelCount() == 0 {
		return nil, apperrors.NewDegenerateImageError(0, 0)
	}

	sample := imaging.Resize(asset.Image(), pe.sampleSize, pe.sampleSize, imaging.Linear)
	points := make([][]float64, 0, len(sample.Pix)/4)
	for i := 0; i+3 < len(sample.Pix); i += 4 {
		points = append(points, []float64{
			float64(sample.Pix[i]),
			float64(sample.Pix[i+1]),
			float64(sample.Pix[i+2]),
		})
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := kmeans(points, pe.config, rng)

	colors := make([]string, len(centroids))
	for i, c := range centroids {
		colors[i] = hexColor(c)
	}
	return colors, nil
}

// hexColor truncates each channel toward zero.
func hexColor(c []float64) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c[0]), channel(c[1]), channel(c[2]))
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
