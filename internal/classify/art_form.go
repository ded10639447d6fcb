package classify

import "github.com/anime-shed/folkart-inspector/internal/analyzer"

// ArtForm is the output of the art form stage.
type ArtForm struct {
	Name        string
	Confidence  float64
	Subcategory string
	Period      string
	Region      string
}

// ClassifyArtForm applies the priority chain; the first matching rule wins.
func ClassifyArtForm(features *analyzer.FeatureBundle) ArtForm {
	ed, sat := features.EdgeDensity, features.MeanSaturation

	var name string
	var confidence float64
	switch {
	case ed > 0.10 && sat < 100:
		name, confidence = ArtFormWarli, 0.92
	case ed > 0.15:
		name, confidence = ArtFormMadhubani, 0.88
	case sat > 120:
		name, confidence = ArtFormPithora, 0.85
	default:
		name, confidence = ArtFormGeneric, 0.75
	}

	return ArtForm{
		Name:        name,
		Confidence:  confidence,
		Subcategory: "Traditional " + name,
		Period:      "Contemporary",
		Region:      regionFor(name),
	}
}

func (a ArtForm) Fields() []Field {
	return []Field{
		{"predictedArtForm", a.Name},
		{"artFormConfidence", a.Confidence},
		{"artStyleSubcategory", a.Subcategory},
		{"artPeriod", a.Period},
		{"artRegion", a.Region},
	}
}
