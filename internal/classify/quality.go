package classify

const bytesPerMB = 1024 * 1024

// Quality is the output of the technical quality stage.
type Quality struct {
	Resolution           string
	Tier                 string
	PrintSuitability     string
	MarketplaceReady     bool
	CompressionArtifacts string
}

// AssessQuality grades an image by pixel count and encoded size.
func AssessQuality(width, height int, byteSize int64) Quality {
	pixels := width * height

	q := Quality{Resolution: "Low", Tier: QualityFair}
	switch {
	case pixels > 2_000_000:
		q.Resolution, q.Tier = "High", QualityExcellent
	case pixels > 1_000_000:
		q.Resolution, q.Tier = "Medium", QualityGood
	}

	q.PrintSuitability = "Standard"
	if q.Tier == QualityExcellent {
		q.PrintSuitability = "Premium"
	}
	q.MarketplaceReady = q.Tier == QualityExcellent || q.Tier == QualityGood

	q.CompressionArtifacts = "Minimal"
	if float64(byteSize)/bytesPerMB > 1 {
		q.CompressionArtifacts = "None"
	}
	return q
}

func (q Quality) Fields() []Field {
	return []Field{
		{"imageResolution", q.Resolution},
		{"imageQuality", q.Tier},
		{"printSuitability", q.PrintSuitability},
		{"marketplaceReady", q.MarketplaceReady},
		{"compressionArtifacts", q.CompressionArtifacts},
	}
}
