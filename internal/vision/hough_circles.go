package vision

import (
	"context"
	"image"
	"math"
	"sort"
)

// Circle is a detected circle in pixel coordinates.
type Circle struct {
	X, Y   float64
	Radius float64
}

// CircleParams configures the gradient Hough circle transform. The
// accumulator always has the resolution of the input image.
type CircleParams struct {
	MinDist        float64 // minimum distance between accepted centres
	CannyHigh      float64 // upper threshold of the internal edge pass; the lower one is half
	AccumThreshold int     // votes a centre needs, and edge points a radius needs
	MinRadius      int
	MaxRadius      int // <= 0 means min(width, height) / 2
	MaxCircles     int // <= 0 means unlimited
}

// DefaultCircleParams returns the parameters used by the feature extractor.
func DefaultCircleParams() CircleParams {
	return CircleParams{
		MinDist:        20,
		CannyHigh:      50,
		AccumThreshold: 30,
	}
}

// HoughCircles finds circles in gray. Every edge pixel votes along its
// gradient in both directions; accumulator peaks become centre candidates,
// and each candidate receives the radius whose shell is densest relative to
// its circumference. ctx is polled once per accumulator row and once per
// candidate centre.
func HoughCircles(ctx context.Context, gray *image.Gray, p CircleParams) ([]Circle, error) {
	pix, w, h := plane(gray)
	if w == 0 || h == 0 {
		return nil, nil
	}
	low := p.CannyHigh / 2
	if low < 1 {
		low = 1
	}
	edges := cannyPlane(pix, w, h, low, p.CannyHigh)
	dx, dy := sobel(pix, w, h)

	minR := p.MinRadius
	if minR < 0 {
		minR = 0
	}
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = min(w, h) / 2
	}
	if maxR < minR {
		return nil, nil
	}

	aw := w + 2
	acc := make([]int32, aw*(h+2))
	points := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < w; x++ {
			i := y*w + x
			if edges[i] == 0 {
				continue
			}
			vx, vy := float64(dx[i]), float64(dy[i])
			if vx == 0 && vy == 0 {
				continue
			}
			mag := math.Sqrt(vx*vx + vy*vy)
			ux, uy := vx/mag, vy/mag
			points = append(points, i)

			for dir := 0; dir < 2; dir++ {
				for r := minR; r <= maxR; r++ {
					cx := int(math.Floor(float64(x) + 0.5 + ux*float64(r)))
					cy := int(math.Floor(float64(y) + 0.5 + uy*float64(r)))
					if cx < 0 || cx >= w || cy < 0 || cy >= h {
						break
					}
					acc[(cy+1)*aw+cx+1]++
				}
				ux, uy = -ux, -uy
			}
		}
	}
	if len(points) == 0 {
		return nil, nil
	}

	threshold := int32(p.AccumThreshold)
	var centres []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := (y+1)*aw + x + 1
			v := acc[c]
			if v > threshold && v > acc[c-1] && v >= acc[c+1] && v > acc[c-aw] && v >= acc[c+aw] {
				centres = append(centres, c)
			}
		}
	}
	sort.SliceStable(centres, func(a, b int) bool {
		return acc[centres[a]] > acc[centres[b]]
	})

	radiusFloor := float64(minR)
	if radiusFloor < 1 {
		radiusFloor = 1
	}
	minDist2 := p.MinDist * p.MinDist
	dist := make([]float64, 0, len(points))
	var circles []Circle
	for _, c := range centres {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cx := float64(c%aw - 1)
		cy := float64(c/aw - 1)

		tooClose := false
		for _, prev := range circles {
			ddx, ddy := prev.X-cx, prev.Y-cy
			if ddx*ddx+ddy*ddy < minDist2 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		dist = dist[:0]
		for _, i := range points {
			ddx := float64(i%w) - cx
			ddy := float64(i/w) - cy
			d := math.Sqrt(ddx*ddx + ddy*ddy)
			if d >= radiusFloor && d <= float64(maxR) {
				dist = append(dist, d)
			}
		}
		radius, support := bestRadius(dist)
		if support > p.AccumThreshold {
			circles = append(circles, Circle{X: cx, Y: cy, Radius: radius})
			if p.MaxCircles > 0 && len(circles) >= p.MaxCircles {
				break
			}
		}
	}
	return circles, nil
}

// bestRadius groups sorted distances into one-pixel shells and returns the
// shell whose point count per unit radius is highest, along with that count.
func bestRadius(dist []float64) (float64, int) {
	if len(dist) == 0 {
		return 0, 0
	}
	sort.Float64s(dist)
	bestR, bestCount := 0.0, 0
	start := 0
	for j := 1; j <= len(dist); j++ {
		if j < len(dist) && dist[j]-dist[start] <= 1 {
			continue
		}
		count := j - start
		r := dist[(start+j-1)/2]
		if bestCount == 0 || float64(count)*bestR >= float64(bestCount)*r {
			bestR, bestCount = r, count
		}
		start = j
	}
	return bestR, bestCount
}
