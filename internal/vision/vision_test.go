package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"
)

func newGray(w, h int, fill func(x, y int) uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = fill(x, y)
		}
	}
	return img
}

func TestGrayscale(t *testing.T) {
	testCases := []struct {
		name     string
		rgb      [3]uint8
		expected uint8
	}{
		{"black", [3]uint8{0, 0, 0}, 0},
		{"white", [3]uint8{255, 255, 255}, 255},
		{"red", [3]uint8{255, 0, 0}, 76},
		{"green", [3]uint8{0, 255, 0}, 150},
		{"blue", [3]uint8{0, 0, 255}, 29},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
			img.SetNRGBA(0, 0, color.NRGBA{R: tc.rgb[0], G: tc.rgb[1], B: tc.rgb[2], A: 255})
			gray := Grayscale(img)
			if gray.Pix[0] != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, gray.Pix[0])
			}
		})
	}
}

func TestCanny_UniformImageHasNoEdges(t *testing.T) {
	gray := newGray(32, 32, func(x, y int) uint8 { return 128 })
	if n := CountNonZero(Canny(gray, 50, 150)); n != 0 {
		t.Errorf("Expected no edges, got %d", n)
	}
}

func TestCanny_VerticalStep(t *testing.T) {
	gray := newGray(20, 10, func(x, y int) uint8 {
		if x < 10 {
			return 0
		}
		return 255
	})

	edges := Canny(gray, 50, 150)
	if n := CountNonZero(edges); n != 10 {
		t.Fatalf("Expected a single 10 pixel edge column, got %d edge pixels", n)
	}
	for y := 0; y < 10; y++ {
		if edges.GrayAt(9, y).Y != 255 {
			t.Errorf("Expected edge at (9,%d)", y)
		}
	}
}

func TestCanny_SubImage(t *testing.T) {
	full := newGray(40, 40, func(x, y int) uint8 {
		if x < 20 {
			return 0
		}
		return 255
	})
	sub := full.SubImage(image.Rect(10, 10, 30, 20)).(*image.Gray)

	edges := Canny(sub, 50, 150)
	if edges.Bounds().Dx() != 20 || edges.Bounds().Dy() != 10 {
		t.Fatalf("Unexpected bounds %v", edges.Bounds())
	}
	if n := CountNonZero(edges); n != 10 {
		t.Errorf("Expected 10 edge pixels, got %d", n)
	}
}

func TestHoughLinesP_HorizontalLine(t *testing.T) {
	edges := newGray(200, 100, func(x, y int) uint8 {
		if y == 50 && x < 100 {
			return 255
		}
		return 0
	})

	segments, err := HoughLinesP(context.Background(), edges, DefaultLineParams())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	s := segments[0]
	if s.Y1 != 50 || s.Y2 != 50 {
		t.Errorf("Expected horizontal segment on row 50, got %+v", s)
	}
	if min(s.X1, s.X2) != 0 || max(s.X1, s.X2) != 99 {
		t.Errorf("Expected segment spanning x=0..99, got %+v", s)
	}
}

func TestHoughLinesP_ShortLineRejected(t *testing.T) {
	edges := newGray(100, 100, func(x, y int) uint8 {
		if y == 20 && x < 30 {
			return 255
		}
		return 0
	})

	if segments, _ := HoughLinesP(context.Background(), edges, DefaultLineParams()); len(segments) != 0 {
		t.Errorf("Expected no segments, got %v", segments)
	}
}

func TestHoughLinesP_MaxLines(t *testing.T) {
	edges := newGray(200, 200, func(x, y int) uint8 {
		if y%20 == 0 && x < 150 {
			return 255
		}
		return 0
	})

	params := DefaultLineParams()
	params.MaxLines = 3
	if segments, _ := HoughLinesP(context.Background(), edges, params); len(segments) != 3 {
		t.Errorf("Expected 3 segments, got %d", len(segments))
	}
}

func TestHoughLinesP_Deterministic(t *testing.T) {
	edges := newGray(120, 120, func(x, y int) uint8 {
		if x == y || y == 60 || x == 30 {
			return 255
		}
		return 0
	})

	first, _ := HoughLinesP(context.Background(), edges, DefaultLineParams())
	second, _ := HoughLinesP(context.Background(), edges, DefaultLineParams())
	if len(first) != len(second) {
		t.Fatalf("Expected identical results, got %d and %d segments", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Segment %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestHoughCircles_Disc(t *testing.T) {
	gray := newGray(100, 100, func(x, y int) uint8 {
		dx, dy := x-50, y-50
		if dx*dx+dy*dy <= 900 {
			return 255
		}
		return 0
	})

	circles, err := HoughCircles(context.Background(), gray, DefaultCircleParams())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(circles) == 0 {
		t.Fatal("Expected at least one circle")
	}
	c := circles[0]
	if math.Hypot(c.X-50, c.Y-50) > 3 {
		t.Errorf("Expected centre near (50,50), got (%.1f,%.1f)", c.X, c.Y)
	}
	if math.Abs(c.Radius-30) > 2 {
		t.Errorf("Expected radius near 30, got %.1f", c.Radius)
	}
}

func TestHoughCircles_UniformImage(t *testing.T) {
	gray := newGray(64, 64, func(x, y int) uint8 { return 200 })
	if circles, _ := HoughCircles(context.Background(), gray, DefaultCircleParams()); len(circles) != 0 {
		t.Errorf("Expected no circles, got %v", circles)
	}
}

// newCells fills a w x h image with random 6 pixel cells, which gives the
// circle accumulator an edge point almost everywhere.
func newCells(w, h int) *image.Gray {
	rng := rand.New(rand.NewSource(7))
	shades := make([]uint8, (w/6+1)*(h/6+1))
	for i := range shades {
		shades[i] = uint8(rng.Intn(256))
	}
	return newGray(w, h, func(x, y int) uint8 {
		return shades[(y/6)*(w/6+1)+x/6]
	})
}

func TestHoughCircles_HonoursDeadline(t *testing.T) {
	gray := newCells(1600, 1200)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := HoughCircles(ctx, gray, DefaultCircleParams())
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Expected return shortly after the deadline, took %s", elapsed)
	}
}

func TestHoughLinesP_Cancelled(t *testing.T) {
	edges := newGray(200, 200, func(x, y int) uint8 { return 255 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := HoughLinesP(ctx, edges, DefaultLineParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGoBackend_Cancelled(t *testing.T) {
	gray := newGray(32, 32, func(x, y int) uint8 { return uint8(x * 8) })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewGoBackend()
	if _, err := b.Edges(ctx, gray, 50, 150); !errors.Is(err, context.Canceled) {
		t.Errorf("Edges: expected context.Canceled, got %v", err)
	}
	if _, err := b.Circles(ctx, gray, DefaultCircleParams()); !errors.Is(err, context.Canceled) {
		t.Errorf("Circles: expected context.Canceled, got %v", err)
	}
}

func TestBestRadius(t *testing.T) {
	dist := []float64{20.3, 10.2, 10.4, 10.9, 20.1}
	r, count := bestRadius(dist)
	if count != 3 || math.Abs(r-10.4) > 1e-9 {
		t.Errorf("Expected shell r=10.4 with 3 points, got r=%.2f count=%d", r, count)
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("go")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Name() != BackendGo {
		t.Errorf("Expected go backend, got %s", b.Name())
	}
	if _, err := NewBackend("cuda"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
