package classify

import (
	"math"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
)

const balanceTolerance = 10

// Composition is the output of the composition stage.
type Composition struct {
	Type           string
	VisualWeight   string
	LineQuality    string
	Texture        string
	PatternDensity string
	Symmetry       string
}

// AnalyzeComposition describes balance, line quality and pattern density.
func AnalyzeComposition(features *analyzer.FeatureBundle, texture TextureAnalyzer) Composition {
	left, right := features.LeftLuminance, features.RightLuminance

	var kind string
	switch {
	case math.Abs(left-right) < balanceTolerance:
		kind = "Balanced"
	case left > right:
		kind = "Left-weighted"
	default:
		kind = "Right-weighted"
	}

	c := Composition{
		Type:           kind,
		VisualWeight:   "Asymmetric",
		LineQuality:    lineQuality(features.EdgeDensity),
		Texture:        texture.Texture(features),
		PatternDensity: patternDensity(features.EdgeDensity),
		Symmetry:       "Asymmetric",
	}
	if kind == "Balanced" {
		c.VisualWeight = "Centered"
		c.Symmetry = "Symmetric"
	}
	return c
}

func lineQuality(edgeDensity float64) string {
	switch {
	case edgeDensity > 0.15:
		return "Bold and Geometric"
	case edgeDensity > 0.08:
		return "Moderate and Flowing"
	default:
		return "Soft and Organic"
	}
}

func patternDensity(edgeDensity float64) string {
	switch {
	case edgeDensity > 0.15:
		return "High"
	case edgeDensity > 0.08:
		return "Medium"
	default:
		return "Low"
	}
}

func (c Composition) Fields() []Field {
	return []Field{
		{"compositionType", c.Type},
		{"visualWeight", c.VisualWeight},
		{"lineQuality", c.LineQuality},
		{"textureAnalysis", c.Texture},
		{"patternDensity", c.PatternDensity},
		{"symmetryLevel", c.Symmetry},
	}
}
