//go:build gocv

package vision

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// gocvBackend checks ctx before each OpenCV call; a running call cannot be
// interrupted.
type gocvBackend struct{}

// NewGocvBackend returns a backend that delegates to OpenCV.
func NewGocvBackend() (Backend, error) {
	return gocvBackend{}, nil
}

func (gocvBackend) Name() string { return BackendGocv }

func (gocvBackend) Edges(ctx context.Context, gray *image.Gray, low, high float64) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(low), float32(high))

	img, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert edge map: %w", err)
	}
	edges, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected edge map type %T", img)
	}
	return edges, nil
}

func (gocvBackend) Circles(ctx context.Context, gray *image.Gray, p CircleParams) ([]Circle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	maxR := p.MaxRadius
	if maxR <= 0 {
		b := gray.Bounds()
		maxR = min(b.Dx(), b.Dy()) / 2
	}

	found := gocv.NewMat()
	defer found.Close()
	gocv.HoughCirclesWithParams(src, &found, gocv.HoughGradient, 1, p.MinDist,
		p.CannyHigh, float64(p.AccumThreshold), p.MinRadius, maxR)

	var circles []Circle
	for i := 0; i < found.Cols(); i++ {
		v := found.GetVecfAt(0, i)
		circles = append(circles, Circle{X: float64(v[0]), Y: float64(v[1]), Radius: float64(v[2])})
		if p.MaxCircles > 0 && len(circles) >= p.MaxCircles {
			break
		}
	}
	return circles, nil
}

func (gocvBackend) Segments(ctx context.Context, edges *image.Gray, p LineParams) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := gocv.ImageGrayToMatGray(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	found := gocv.NewMat()
	defer found.Close()
	gocv.HoughLinesPWithParams(src, &found, float32(p.Rho), float32(p.Theta),
		p.Threshold, float32(p.MinLineLength), float32(p.MaxLineGap))

	var segments []Segment
	for i := 0; i < found.Rows(); i++ {
		v := found.GetVeciAt(i, 0)
		segments = append(segments, Segment{X1: int(v[0]), Y1: int(v[1]), X2: int(v[2]), Y2: int(v[3])})
		if p.MaxLines > 0 && len(segments) >= p.MaxLines {
			break
		}
	}
	return segments, nil
}
