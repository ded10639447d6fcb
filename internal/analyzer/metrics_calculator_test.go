package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/anime-shed/folkart-inspector/internal/vision"
)

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func TestNewMetricsCalculator(t *testing.T) {
	calc := NewMetricsCalculator()
	if calc == nil {
		t.Error("Expected non-nil metrics calculator")
	}
}

func TestSaturationValue(t *testing.T) {
	testCases := []struct {
		name    string
		r, g, b uint8
		s, v    uint8
	}{
		{"black", 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 255},
		{"pure red", 255, 0, 0, 255, 255},
		{"gray", 128, 128, 128, 0, 128},
		{"muted red", 200, 100, 100, 127, 200},
		{"dark teal", 0, 64, 64, 255, 64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, v := saturationValue(tc.r, tc.g, tc.b)
			if s != tc.s || v != tc.v {
				t.Errorf("Expected S=%d V=%d, got S=%d V=%d", tc.s, tc.v, s, v)
			}
		})
	}
}

func TestColorMeans(t *testing.T) {
	calc := NewMetricsCalculator()

	testCases := []struct {
		name string
		fill color.RGBA
		sat  float64
		val  float64
	}{
		{"gray", color.RGBA{128, 128, 128, 255}, 0, 128},
		{"red", color.RGBA{255, 0, 0, 255}, 255, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := toNRGBA(createTestImage(37, 23, tc.fill))
			sat, val := calc.ColorMeans(img)
			if sat != tc.sat || val != tc.val {
				t.Errorf("Expected %f/%f, got %f/%f", tc.sat, tc.val, sat, val)
			}
		})
	}
}

func TestColorMeans_StripCountIndependent(t *testing.T) {
	img := toNRGBA(createGradientImage(64, 97))

	single := &metricsCalculator{workers: 1}
	many := &metricsCalculator{workers: 7}

	s1, v1 := single.ColorMeans(img)
	s2, v2 := many.ColorMeans(img)
	if s1 != s2 || v1 != v2 {
		t.Errorf("Expected identical means, got %f/%f and %f/%f", s1, v1, s2, v2)
	}
}

func TestSpatialBalance(t *testing.T) {
	calc := NewMetricsCalculator()

	halves := func(w int) *image.Gray {
		img := image.NewGray(image.Rect(0, 0, w, 5))
		for y := 0; y < 5; y++ {
			for x := 0; x < w; x++ {
				if x >= w/2 {
					img.SetGray(x, y, color.Gray{Y: 200})
				}
			}
		}
		return img
	}

	testCases := []struct {
		name        string
		img         *image.Gray
		left, right float64
	}{
		{"even width", halves(4), 0, 200},
		{"odd width", halves(5), 0, 200},
		{"single column", halves(1), math.NaN(), 200},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			left, right := calc.SpatialBalance(tc.img)
			if math.IsNaN(tc.left) != math.IsNaN(left) {
				t.Fatalf("Expected left %f, got %f", tc.left, left)
			}
			if (!math.IsNaN(left) && math.Abs(left-tc.left) > 1e-9) || math.Abs(right-tc.right) > 1e-9 {
				t.Errorf("Expected %f/%f, got %f/%f", tc.left, tc.right, left, right)
			}
		})
	}
}

func TestEdgeDensity(t *testing.T) {
	calc := NewMetricsCalculator()

	edges := image.NewGray(image.Rect(0, 0, 5, 2))
	edges.Pix[0] = 255
	edges.Pix[4] = 255
	edges.Pix[9] = 255

	if d := calc.EdgeDensity(edges); math.Abs(d-0.3) > 1e-9 {
		t.Errorf("Expected density 0.3, got %f", d)
	}
	if d := calc.EdgeDensity(image.NewGray(image.Rect(0, 0, 0, 0))); d != 0 {
		t.Errorf("Expected 0 for empty map, got %f", d)
	}
}

func TestSpatialBalance_FromGrayscale(t *testing.T) {
	calc := NewMetricsCalculator()
	img := toNRGBA(createTestImage(10, 10, color.RGBA{255, 0, 0, 255}))

	left, right := calc.SpatialBalance(vision.Grayscale(img))
	if left != 76 || right != 76 {
		t.Errorf("Expected 76/76 for pure red, got %f/%f", left, right)
	}
}
