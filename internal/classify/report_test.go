package classify

import (
	"encoding/json"
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"

	"github.com/anime-shed/folkart-inspector/internal/analyzer"
	apperrors "github.com/anime-shed/folkart-inspector/internal/errors"
)

func stageResults() []Contributor {
	return []Contributor{ArtForm{}, ColorProfile{}, Composition{}, Scene{}, Culture{}, Quality{}, Engagement{}, Merit{}, Specs{}}
}

func TestSchema_StageKeysDisjointAndComplete(t *testing.T) {
	seen := map[string]string{}
	var all []string
	for _, stage := range stageResults() {
		for _, f := range stage.Fields() {
			owner := reflect.TypeOf(stage).Name()
			if prev, dup := seen[f.Key]; dup {
				t.Errorf("Key %q contributed by both %s and %s", f.Key, prev, owner)
			}
			seen[f.Key] = owner
			all = append(all, f.Key)
		}
	}

	if len(all) != 49 {
		t.Errorf("Expected 49 keys, got %d", len(all))
	}
	if !reflect.DeepEqual(all, SchemaKeys()) {
		t.Errorf("Stage keys do not match schema:\n%v\n%v", all, SchemaKeys())
	}
}

func TestMerge_Collision(t *testing.T) {
	_, err := Merge(ArtForm{}, Specs{}, ArtForm{})
	if !apperrors.IsType(err, apperrors.ErrorTypeSchemaCollision) {
		t.Fatalf("Expected schema collision, got %v", err)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Details != "predictedArtForm" {
		t.Errorf("Expected colliding key in details, got %v", err)
	}
}

func TestReport_JSONOrderAndRoundTrip(t *testing.T) {
	report, err := Merge(ArtForm{Name: ArtFormPithora, Confidence: 0.85}, Specs{AspectRatio: "4:3", BitDepth: 24})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	encoded := string(data)
	if !strings.HasPrefix(encoded, `{"predictedArtForm":"Pithora","artFormConfidence":0.85,`) {
		t.Errorf("Unexpected key order: %s", encoded)
	}
	if strings.Index(encoded, `"artRegion"`) > strings.Index(encoded, `"aspectRatio"`) {
		t.Errorf("Expected art form keys before spec keys: %s", encoded)
	}

	var restored Report
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(restored.Keys(), report.Keys()) {
		t.Errorf("Key order lost: %v", restored.Keys())
	}
	again, _ := json.Marshal(&restored)
	if string(again) != encoded {
		t.Errorf("Re-encoded report differs:\n%s\n%s", again, encoded)
	}
	if restored.ArtForm() != ArtFormPithora || restored.Confidence() != 0.85 {
		t.Errorf("Unexpected accessors %s/%f", restored.ArtForm(), restored.Confidence())
	}
}

func TestReport_UnmarshalRejects(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"array", `["a"]`},
		{"duplicate key", `{"a":1,"a":2}`},
		{"truncated", `{"a":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r Report
			if err := json.Unmarshal([]byte(tc.data), &r); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func newAsset(t *testing.T, w, h int, size int64) *analyzer.ImageAsset {
	t.Helper()
	asset, err := analyzer.NewImageAsset(image.NewRGBA(image.Rect(0, 0, w, h)), size, "jpeg")
	if err != nil {
		t.Fatalf("Failed to create asset: %v", err)
	}
	return asset
}

func TestClassify_WarliScenario(t *testing.T) {
	features := &analyzer.FeatureBundle{
		EdgeDensity:    0.12,
		MeanSaturation: 60,
		LeftLuminance:  100,
		RightLuminance: 104,
		DominantColors: []string{"#8b4513", "#f5deb3", "#2f1b0c", "#a0522d", "#ffffff"},
	}
	report, err := NewClassifier().Classify(newAsset(t, 64, 48, 2<<20), features)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !reflect.DeepEqual(report.Keys(), SchemaKeys()) {
		t.Fatalf("Expected full schema in order, got %v", report.Keys())
	}
	expected := map[string]interface{}{
		"predictedArtForm":  "Warli",
		"artFormConfidence": 0.92,
		"artRegion":         "Maharashtra, India",
		"compositionType":   "Balanced",
		"visualWeight":      "Centered",
		"symmetryLevel":     "Symmetric",
		"priceRange":        "$200-500",
		"collectorValue":    "Standard",
		"aspectRatio":       "64:48",
		"fileSize":          "2.0 MB",
		"sceneType":         "Village Life",
		"suggestedCaption":  "Vibrant Warli art depicting Village Life",
	}
	for key, want := range expected {
		if got, _ := report.Get(key); got != want {
			t.Errorf("%s: expected %v, got %v", key, want, got)
		}
	}
	if dominant, _ := report.Get("dominantColors"); !reflect.DeepEqual(dominant, features.DominantColors[:3]) {
		t.Errorf("Unexpected dominant colours %v", dominant)
	}
}

func TestClassify_PithoraScenario(t *testing.T) {
	features := &analyzer.FeatureBundle{EdgeDensity: 0.05, MeanSaturation: 130}
	report, err := NewClassifier().Classify(newAsset(t, 10, 10, 100), features)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.ArtForm() != ArtFormPithora || report.Confidence() != 0.85 {
		t.Errorf("Expected Pithora 0.85, got %s %f", report.ArtForm(), report.Confidence())
	}
	if region := report.String("artRegion"); region != "Gujarat, India" {
		t.Errorf("Unexpected region %s", region)
	}
}

type panickingTexture struct{}

func (panickingTexture) Texture(*analyzer.FeatureBundle) string { panic("texture model crashed") }

func TestClassify_StagePanic(t *testing.T) {
	c := NewClassifier(WithTextureAnalyzer(panickingTexture{}))
	report, err := c.Classify(newAsset(t, 4, 4, 10), &analyzer.FeatureBundle{})
	if report != nil {
		t.Error("Expected no partial report")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInternal) {
		t.Errorf("Expected internal error, got %v", err)
	}
}

func TestClassify_MissingInput(t *testing.T) {
	if _, err := NewClassifier().Classify(nil, &analyzer.FeatureBundle{}); err == nil {
		t.Error("Expected error for nil asset")
	}
}

type fixedHarmony struct{}

func (fixedHarmony) Estimate([]string) ColorCharacter {
	return ColorCharacter{Harmony: "Cool", Contrast: "High", Temperature: "Cold"}
}

func TestClassify_CustomEstimator(t *testing.T) {
	c := NewClassifier(WithColorHarmonyEstimator(fixedHarmony{}), WithObjectDetector(stubDetector{[]string{"geometric patterns"}}))
	report, err := c.Classify(newAsset(t, 4, 4, 10), &analyzer.FeatureBundle{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.String("colorHarmony") != "Cool" || report.String("sceneType") != "Abstract Pattern" {
		t.Errorf("Custom estimators not used: %s / %s", report.String("colorHarmony"), report.String("sceneType"))
	}
	if report.String("culturalContext") != "Ritual ceremony" {
		t.Errorf("Unexpected cultural context %s", report.String("culturalContext"))
	}
}
