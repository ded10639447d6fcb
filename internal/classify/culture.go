package classify

// Culture is the output of the cultural context stage.
type Culture struct {
	Context     string
	Ritual      string
	Season      string
	Social      string
	Mythologies []string
}

// AnalyzeCulture infers the cultural setting from the art form and the
// detected objects.
func AnalyzeCulture(art ArtForm, scene Scene) Culture {
	c := Culture{
		Context:     "Daily life",
		Ritual:      "Community activity",
		Season:      seasonFor(art.Name),
		Social:      "Community Gathering",
		Mythologies: mythologyFor(art.Name),
	}
	switch {
	case contains(scene.Objects, ObjectHumanFigures) && contains(scene.Objects, ObjectSun):
		c.Context, c.Ritual = "Festival celebration", "Harvest Festival"
	case contains(scene.Objects, ObjectGeometricPatterns):
		c.Context, c.Ritual = "Ritual ceremony", "Sacred ritual"
	}
	return c
}

func (c Culture) Fields() []Field {
	return []Field{
		{"culturalContext", c.Context},
		{"ritualContext", c.Ritual},
		{"seasonalAssociation", c.Season},
		{"socialContext", c.Social},
		{"mythologicalReferences", c.Mythologies},
	}
}
