package classify

import "github.com/anime-shed/folkart-inspector/internal/analyzer"

// ColorCharacter describes the perceived character of a palette.
type ColorCharacter struct {
	Harmony     string
	Contrast    string
	Temperature string
}

// ColorHarmonyEstimator judges a palette of #rrggbb colours.
type ColorHarmonyEstimator interface {
	Estimate(palette []string) ColorCharacter
}

// TextureAnalyzer labels the surface texture of an image.
type TextureAnalyzer interface {
	Texture(features *analyzer.FeatureBundle) string
}

// SceneInventory is what an ObjectDetector found in an image.
type SceneInventory struct {
	Objects               []string
	FigureCount           int
	Animals               []string
	NaturalElements       []string
	ArchitecturalElements []string
}

// ObjectDetector finds scene elements from extracted features.
type ObjectDetector interface {
	Detect(features *analyzer.FeatureBundle) SceneInventory
}

// RuleBasedColorHarmony always reports a warm, earthy, medium-contrast palette.
type RuleBasedColorHarmony struct{}

func (RuleBasedColorHarmony) Estimate(palette []string) ColorCharacter {
	return ColorCharacter{
		Harmony:     "Warm and Earthy",
		Contrast:    "Medium",
		Temperature: "Warm",
	}
}

// RuleBasedTexture always reports a rough, natural texture.
type RuleBasedTexture struct{}

func (RuleBasedTexture) Texture(features *analyzer.FeatureBundle) string {
	return "Rough and Natural"
}

// RuleBasedObjectDetector maps shape primitives to objects and assumes the
// figures and nature elements common to folk paintings are present.
type RuleBasedObjectDetector struct{}

func (RuleBasedObjectDetector) Detect(features *analyzer.FeatureBundle) SceneInventory {
	objects := make([]string, 0, 4)
	if features.HasCircularPrimitive {
		objects = append(objects, ObjectSun)
	}
	if features.HasLinearPrimitiveCluster {
		objects = append(objects, ObjectGeometricPatterns)
	}
	objects = append(objects, ObjectHumanFigures, ObjectNatureElements)

	return SceneInventory{
		Objects:               objects,
		FigureCount:           estimatedFigureCount,
		Animals:               clone(detectedAnimals),
		NaturalElements:       clone(detectedNature),
		ArchitecturalElements: clone(detectedArchitecture),
	}
}
