package classify

import (
	"fmt"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

// Classifier runs the nine stages and aggregates their output.
type Classifier struct {
	harmony ColorHarmonyEstimator
	texture TextureAnalyzer
	objects ObjectDetector
}

// Option customises a Classifier.
type Option func(*Classifier)

// WithColorHarmonyEstimator replaces the rule-based palette judge.
func WithColorHarmonyEstimator(e ColorHarmonyEstimator) Option {
	return func(c *Classifier) { c.harmony = e }
}

// WithTextureAnalyzer replaces the rule-based texture labeller.
func WithTextureAnalyzer(t TextureAnalyzer) Option {
	return func(c *Classifier) { c.texture = t }
}

// WithObjectDetector replaces the rule-based scene detector.
func WithObjectDetector(d ObjectDetector) Option {
	return func(c *Classifier) { c.objects = d }
}

// NewClassifier creates a classifier using the rule-based estimators unless
// overridden.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		harmony: RuleBasedColorHarmony{},
		texture: RuleBasedTexture{},
		objects: RuleBasedObjectDetector{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify produces the report for an asset and its features. A panic in
// any stage aborts the whole report.
func (c *Classifier) Classify(asset *analyzer.ImageAsset, features *analyzer.FeatureBundle) (report *Report, err error) {
	if asset == nil || features == nil {
		return nil, apperrors.NewInternalError("classification requires an asset and its features", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = apperrors.NewInternalError("classification failed", fmt.Errorf("stage panicked: %v", r))
		}
	}()

	w, h, size := asset.Width(), asset.Height(), asset.ByteSize()

	art := ClassifyArtForm(features)
	colors := DescribeColors(features, c.harmony)
	composition := AnalyzeComposition(features, c.texture)
	scene := DetectScene(features, c.objects)
	culture := AnalyzeCulture(art, scene)
	quality := AssessQuality(w, h, size)
	engagement := GenerateEngagement(art, scene)
	merit := AssessMerit(art, quality)
	specs := DescribeSpecs(w, h, size)

	return Merge(art, colors, composition, scene, culture, quality, engagement, merit, specs)
}
