package classify

// Merit is the output of the artistic merit stage.
type Merit struct {
	Complexity     string
	Craftsmanship  string
	Authenticity   float64
	Significance   string
	CollectorValue string
}

// AssessMerit grades artistic merit from classification confidence and the
// technical quality tier.
func AssessMerit(art ArtForm, quality Quality) Merit {
	switch {
	case art.Confidence > 0.9 && quality.Tier == QualityExcellent:
		return Merit{"Medium-High", "Excellent", 0.95, "High", "Premium"}
	case art.Confidence > 0.8:
		return Merit{"Medium", "Good", 0.85, "Medium", "Standard"}
	default:
		return Merit{"Low-Medium", "Fair", 0.75, "Low", "Basic"}
	}
}

func (m Merit) Fields() []Field {
	return []Field{
		{"artisticComplexity", m.Complexity},
		{"craftsmanshipQuality", m.Craftsmanship},
		{"authenticityScore", m.Authenticity},
		{"culturalSignificance", m.Significance},
		{"collectorValue", m.CollectorValue},
	}
}
