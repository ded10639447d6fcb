package classify

// reportSchema lists every report key in stage order.
var reportSchema = []string{
	// art form
	"predictedArtForm", "artFormConfidence", "artStyleSubcategory", "artPeriod", "artRegion",
	// colour
	"dominantColors", "colorPalette", "colorHarmony", "colorContrast", "colorSaturation", "colorTemperature",
	// composition
	"compositionType", "visualWeight", "lineQuality", "textureAnalysis", "patternDensity", "symmetryLevel",
	// scene
	"detectedObjects", "sceneType", "figureCount", "animalPresence", "naturalElements", "architecturalElements",
	// cultural context
	"culturalContext", "ritualContext", "seasonalAssociation", "socialContext", "mythologicalReferences",
	// technical quality
	"imageResolution", "imageQuality", "printSuitability", "marketplaceReady", "compressionArtifacts",
	// engagement
	"suggestedTags", "recommendedHashtags", "suggestedCaption", "targetAudience", "priceRange", "marketplaceCategories",
	// artistic merit
	"artisticComplexity", "craftsmanshipQuality", "authenticityScore", "culturalSignificance", "collectorValue",
	// technical specification
	"aspectRatio", "fileSize", "colorSpace", "bitDepth", "compressionType",
}

// SchemaKeys returns the full list of report keys in stage order.
func SchemaKeys() []string {
	return append([]string(nil), reportSchema...)
}
