package analyzer

import (
	"context"
	"image"
)

// FeatureAnalyzer turns an asset into a FeatureBundle.
type FeatureAnalyzer interface {
	Extract(ctx context.Context, asset *ImageAsset) (*FeatureBundle, error)
}

// MetricsCalculator handles the scalar pixel statistics
type MetricsCalculator interface {
	ColorMeans(img *image.NRGBA) (saturation, value float64)
	SpatialBalance(gray *image.Gray) (left, right float64)
	EdgeDensity(edges *image.Gray) float64
}

// PaletteExtractor quantizes an asset into its dominant colours
type PaletteExtractor interface {
	Palette(asset *ImageAsset, seed int64) ([]string, error)
}
