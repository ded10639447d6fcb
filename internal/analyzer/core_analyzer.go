package analyzer

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
	"github.com/anime-shed/folkart-inspector/internal/logger"
	"github.com/anime-shed/folkart-inspector/internal/vision"
)

// coreAnalyzer implements FeatureAnalyzer. Pixel measurements and palette
// quantization are independent and run concurrently.
type coreAnalyzer struct {
	backend           vision.Backend
	metricsCalculator MetricsCalculator
	palette           PaletteExtractor
	options           AnalysisOptions
}

// NewFeatureAnalyzer creates a feature analyzer on top of a vision backend
func NewFeatureAnalyzer(backend vision.Backend, options AnalysisOptions) (FeatureAnalyzer, error) {
	if backend == nil {
		return nil, fmt.Errorf("vision backend is required")
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis options: %w", err)
	}
	return &coreAnalyzer{
		backend:           backend,
		metricsCalculator: NewMetricsCalculator(),
		palette:           NewPaletteExtractor(options),
		options:           options,
	}, nil
}

// Extract computes the feature bundle for asset
func (ca *coreAnalyzer) Extract(ctx context.Context, asset *ImageAsset) (*FeatureBundle, error) {
	if asset == nil || asset.PixelCount() == 0 {
		return nil, apperrors.NewDegenerateImageError(0, 0)
	}

	var (
		bundle FeatureBundle
		colors []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard("measure", func() error {
		return ca.measure(gctx, asset, &bundle)
	}))
	g.Go(guard("palette", func() error {
		var err error
		colors, err = ca.palette.Palette(asset, ca.options.Seed)
		return err
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle.DominantColors = colors
	logger.WithFields(logrus.Fields{
		"edge_density":    bundle.EdgeDensity,
		"mean_saturation": bundle.MeanSaturation,
		"circles":         bundle.HasCircularPrimitive,
		"line_cluster":    bundle.HasLinearPrimitiveCluster,
		"backend":         ca.backend.Name(),
	}).Debug("Features extracted")
	return &bundle, nil
}

// measure fills every bundle field except the palette.
func (ca *coreAnalyzer) measure(ctx context.Context, asset *ImageAsset, bundle *FeatureBundle) error {
	img := asset.Image()
	gray := vision.Grayscale(img)

	edges, err := ca.backend.Edges(ctx, gray, ca.options.CannyLow, ca.options.CannyHigh)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("edge detection failed: %w", err)
	}
	bundle.EdgeDensity = ca.metricsCalculator.EdgeDensity(edges)
	bundle.MeanSaturation, bundle.MeanValue = ca.metricsCalculator.ColorMeans(img)
	bundle.LeftLuminance, bundle.RightLuminance = ca.metricsCalculator.SpatialBalance(gray)
	if err := ctx.Err(); err != nil {
		return err
	}

	circleGray, circleParams := ca.circleInput(img, gray)
	circleParams.MaxCircles = 1
	circles, err := ca.backend.Circles(ctx, circleGray, circleParams)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("circle detection failed: %w", err)
	}
	bundle.HasCircularPrimitive = len(circles) > 0

	lineParams := ca.options.Lines
	lineParams.Seed = ca.options.Seed
	lineParams.MaxLines = ca.options.LineClusterThreshold + 1
	segments, err := ca.backend.Segments(ctx, edges, lineParams)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("line detection failed: %w", err)
	}
	bundle.HasLinearPrimitiveCluster = len(segments) > ca.options.LineClusterThreshold
	return nil
}

// circleInput returns the luminance plane the circle transform runs on.
// Images whose longer side exceeds CircleMaxDimension are downscaled, and the
// distance parameters are scaled with them.
func (ca *coreAnalyzer) circleInput(img *image.NRGBA, gray *image.Gray) (*image.Gray, vision.CircleParams) {
	params := ca.options.Circles
	limit := ca.options.CircleMaxDimension
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if limit <= 0 || longest <= limit {
		return gray, params
	}

	small := imaging.Fit(img, limit, limit, imaging.Linear)
	scale := float64(small.Bounds().Dx()) / float64(b.Dx())
	params.MinDist *= scale
	params.MinRadius = int(math.Floor(float64(params.MinRadius) * scale))
	if params.MaxRadius > 0 {
		params.MaxRadius = max(1, int(math.Ceil(float64(params.MaxRadius)*scale)))
	}
	return vision.Grayscale(small), params
}

// guard converts a panic inside an extraction goroutine into an error.
func guard(stage string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewInternalError("feature extraction failed", fmt.Errorf("%s panicked: %v", stage, r))
			}
		}()
		return fn()
	}
}
