package classify

import "github.com/anime-shed/folkart-inspector/internal/analyzer"

// Scene is the output of the scene stage.
type Scene struct {
	Objects               []string
	Type                  string
	FigureCount           int
	Animals               []string
	NaturalElements       []string
	ArchitecturalElements []string
}

// DetectScene runs the object detector and derives the scene type.
func DetectScene(features *analyzer.FeatureBundle, detector ObjectDetector) Scene {
	inv := detector.Detect(features)
	return Scene{
		Objects:               clone(inv.Objects),
		Type:                  sceneType(inv.Objects),
		FigureCount:           inv.FigureCount,
		Animals:               clone(inv.Animals),
		NaturalElements:       clone(inv.NaturalElements),
		ArchitecturalElements: clone(inv.ArchitecturalElements),
	}
}

func sceneType(objects []string) string {
	switch {
	case contains(objects, ObjectHumanFigures):
		return "Village Life"
	case contains(objects, ObjectGeometricPatterns):
		return "Abstract Pattern"
	default:
		return "Nature Scene"
	}
}

func (s Scene) Fields() []Field {
	return []Field{
		{"detectedObjects", s.Objects},
		{"sceneType", s.Type},
		{"figureCount", s.FigureCount},
		{"animalPresence", s.Animals},
		{"naturalElements", s.NaturalElements},
		{"architecturalElements", s.ArchitecturalElements},
	}
}
