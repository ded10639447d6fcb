package analyzer

import (
	"fmt"

	"github.com/anime-shed/folkart-inspector/internal/vision"
)

// AnalysisOptions provides configuration for feature extraction
type AnalysisOptions struct {
	// Seed drives k-means initialisation and the Hough line visiting order.
	Seed int64

	// Edge detection thresholds
	CannyLow  float64
	CannyHigh float64

	// Shape detection
	Circles              vision.CircleParams
	Lines                vision.LineParams
	LineClusterThreshold int // more segments than this marks a linear cluster
	// CircleMaxDimension caps the longer side of the image the circle
	// transform runs on; larger images are downscaled first. 0 disables it.
	CircleMaxDimension int

	// Palette quantization
	PaletteColors     int
	PaletteSampleSize int
	KMeansRestarts    int
	KMeansMaxIter     int
	KMeansTolerance   float64
}

// DefaultOptions returns the options the pipeline runs with
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Seed:                 42,
		CannyLow:             50,
		CannyHigh:            150,
		Circles:              vision.DefaultCircleParams(),
		Lines:                vision.DefaultLineParams(),
		LineClusterThreshold: 10,
		CircleMaxDimension:   800,
		PaletteColors:        5,
		PaletteSampleSize:    150,
		KMeansRestarts:       10,
		KMeansMaxIter:        300,
		KMeansTolerance:      1e-4,
	}
}

// WithSeed returns options using the given random seed
func (opts AnalysisOptions) WithSeed(seed int64) AnalysisOptions {
	opts.Seed = seed
	return opts
}

// WithCannyThresholds overrides the edge detector thresholds
func (opts AnalysisOptions) WithCannyThresholds(low, high float64) AnalysisOptions {
	opts.CannyLow = low
	opts.CannyHigh = high
	return opts
}

// WithCircleMaxDimension changes the size circle detection is downscaled to
func (opts AnalysisOptions) WithCircleMaxDimension(n int) AnalysisOptions {
	opts.CircleMaxDimension = n
	return opts
}

// WithPaletteColors changes the number of dominant colours extracted
func (opts AnalysisOptions) WithPaletteColors(k int) AnalysisOptions {
	opts.PaletteColors = k
	return opts
}

// WithKMeansRestarts changes how many k-means initialisations are tried
func (opts AnalysisOptions) WithKMeansRestarts(n int) AnalysisOptions {
	opts.KMeansRestarts = n
	return opts
}

// Validate rejects options the extractor cannot run with
func (opts AnalysisOptions) Validate() error {
	switch {
	case opts.CannyLow < 0 || opts.CannyHigh <= 0:
		return fmt.Errorf("canny thresholds must be positive (got %.1f, %.1f)", opts.CannyLow, opts.CannyHigh)
	case opts.PaletteColors <= 0:
		return fmt.Errorf("palette colors must be > 0 (got %d)", opts.PaletteColors)
	case opts.PaletteSampleSize <= 0:
		return fmt.Errorf("palette sample size must be > 0 (got %d)", opts.PaletteSampleSize)
	case opts.KMeansRestarts <= 0 || opts.KMeansMaxIter <= 0:
		return fmt.Errorf("k-means restarts and iterations must be > 0")
	case opts.Lines.Rho <= 0 || opts.Lines.Theta <= 0:
		return fmt.Errorf("hough line resolution must be > 0")
	case opts.CircleMaxDimension < 0:
		return fmt.Errorf("circle max dimension must be >= 0 (got %d)", opts.CircleMaxDimension)
	}
	return nil
}
