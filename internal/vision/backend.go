package vision

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Backend executes the edge and shape operators. Implementations must be
// safe for concurrent use and must not retain the input images. A cancelled
// ctx ends the operator early with ctx.Err().
type Backend interface {
	Name() string
	Edges(ctx context.Context, gray *image.Gray, low, high float64) (*image.Gray, error)
	Circles(ctx context.Context, gray *image.Gray, p CircleParams) ([]Circle, error)
	Segments(ctx context.Context, edges *image.Gray, p LineParams) ([]Segment, error)
}

const (
	BackendGo   = "go"
	BackendGocv = "gocv"
)

type goBackend struct{}

// NewGoBackend returns the pure Go implementation.
func NewGoBackend() Backend {
	return goBackend{}
}

func (goBackend) Name() string { return BackendGo }

func (goBackend) Edges(ctx context.Context, gray *image.Gray, low, high float64) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Canny(gray, low, high), nil
}

func (goBackend) Circles(ctx context.Context, gray *image.Gray, p CircleParams) ([]Circle, error) {
	return HoughCircles(ctx, gray, p)
}

func (goBackend) Segments(ctx context.Context, edges *image.Gray, p LineParams) ([]Segment, error) {
	return HoughLinesP(ctx, edges, p)
}

// NewBackend resolves a backend by name.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendGo:
		return NewGoBackend(), nil
	case BackendGocv:
		return NewGocvBackend()
	default:
		return nil, fmt.Errorf("unknown vision backend: %q", name)
	}
}
