package classify

import "github.com/anime-shed/folkart-inspector/internal/analyzer"

// ColorProfile is the output of the colour stage.
type ColorProfile struct {
	Dominant    []string
	Palette     []string
	Harmony     string
	Contrast    string
	Saturation  string
	Temperature string
}

// DescribeColors reports the palette and its character. Dominant colours are
// the first three palette entries.
func DescribeColors(features *analyzer.FeatureBundle, estimator ColorHarmonyEstimator) ColorProfile {
	palette := clone(features.DominantColors)
	dominant := palette
	if len(dominant) > 3 {
		dominant = dominant[:3]
	}
	character := estimator.Estimate(clone(palette))

	return ColorProfile{
		Dominant:    clone(dominant),
		Palette:     palette,
		Harmony:     character.Harmony,
		Contrast:    character.Contrast,
		Saturation:  saturationLevel(features.MeanSaturation),
		Temperature: character.Temperature,
	}
}

func saturationLevel(saturation float64) string {
	switch {
	case saturation > 150:
		return "High"
	case saturation > 100:
		return "Moderate"
	default:
		return "Low"
	}
}

func (c ColorProfile) Fields() []Field {
	return []Field{
		{"dominantColors", c.Dominant},
		{"colorPalette", c.Palette},
		{"colorHarmony", c.Harmony},
		{"colorContrast", c.Contrast},
		{"colorSaturation", c.Saturation},
		{"colorTemperature", c.Temperature},
	}
}
