// Package classify turns extracted image features into a folk-art report.
// Nine stages run in a fixed order; each is a pure function of the feature
// bundle, the asset dimensions and the typed results of earlier stages.
package classify

const (
	ArtFormWarli     = "Warli"
	ArtFormMadhubani = "Madhubani"
	ArtFormPithora   = "Pithora"
	ArtFormGeneric   = "Generic Folk Art"
)

const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
)

const (
	ObjectSun               = "sun"
	ObjectGeometricPatterns = "geometric patterns"
	ObjectHumanFigures      = "human figures"
	ObjectNatureElements    = "nature elements"
)

var artRegions = map[string]string{
	ArtFormWarli:     "Maharashtra, India",
	ArtFormMadhubani: "Bihar, India",
	ArtFormPithora:   "Gujarat, India",
	ArtFormGeneric:   "Various regions",
}

var seasonalAssociations = map[string]string{
	ArtFormWarli:     "Monsoon",
	ArtFormMadhubani: "Monsoon",
	ArtFormPithora:   "Monsoon",
	ArtFormGeneric:   "Monsoon",
}

var mythologicalReferences = map[string][]string{
	ArtFormWarli:     {"nature spirits", "ancestral worship"},
	ArtFormMadhubani: {"nature spirits", "ancestral worship"},
	ArtFormPithora:   {"nature spirits", "ancestral worship"},
	ArtFormGeneric:   {"nature spirits", "ancestral worship"},
}

const (
	defaultRegion = "Unknown"
	defaultSeason = "Monsoon"
)

var defaultMythology = []string{"nature spirits", "ancestral worship"}

// Fixed placeholder outputs of the rule-based scene detector.
const estimatedFigureCount = 8

var (
	detectedAnimals       = []string{"birds", "cattle"}
	detectedNature        = []string{"trees", "sun", "moon"}
	detectedArchitecture  = []string{"huts", "fences"}
	targetAudience        = []string{"Art Collectors", "Cultural Enthusiasts", "Interior Designers"}
	marketplaceCategories = []string{"Folk Art", "Traditional", "Cultural", "Handmade"}
	staticHashtags        = []string{"#TribalArt", "#IndianFolkArt", "#TraditionalArt", "#CulturalHeritage"}
)

func regionFor(artForm string) string {
	if region, ok := artRegions[artForm]; ok {
		return region
	}
	return defaultRegion
}

func seasonFor(artForm string) string {
	if season, ok := seasonalAssociations[artForm]; ok {
		return season
	}
	return defaultSeason
}

func mythologyFor(artForm string) []string {
	if refs, ok := mythologicalReferences[artForm]; ok {
		return clone(refs)
	}
	return clone(defaultMythology)
}

// clone copies a slice so report values never alias package tables.
func clone(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
