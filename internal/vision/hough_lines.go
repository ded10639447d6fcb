package vision

import (
	"context"
	"image"
	"math"
	"math/rand"
)

// Segment is a detected line segment with inclusive end points.
type Segment struct {
	X1, Y1 int
	X2, Y2 int
}

// LineParams configures the probabilistic Hough transform.
type LineParams struct {
	Rho           float64 // distance resolution in pixels
	Theta         float64 // angle resolution in radians
	Threshold     int
	MinLineLength int
	MaxLineGap    int
	MaxLines      int   // <= 0 means unlimited
	Seed          int64 // seeds the order in which edge points are visited
}

// DefaultLineParams returns the parameters used by the feature extractor.
func DefaultLineParams() LineParams {
	return LineParams{
		Rho:           1,
		Theta:         math.Pi / 180,
		Threshold:     50,
		MinLineLength: 50,
		MaxLineGap:    10,
		Seed:          1,
	}
}

const (
	lineShift = 16

	// edge points visited between context checks
	linePollInterval = 4096
)

// HoughLinesP extracts line segments from a binary edge map. Edge points are
// visited in random order; once a point's accumulator line crosses the
// threshold, the segment through it is walked in both directions, tolerating
// gaps up to MaxLineGap, and its pixels are removed from further voting.
func HoughLinesP(ctx context.Context, edges *image.Gray, p LineParams) ([]Segment, error) {
	pix, w, h := plane(edges)
	if w == 0 || h == 0 || p.Rho <= 0 || p.Theta <= 0 {
		return nil, nil
	}

	numAngle := int(math.Round(math.Pi / p.Theta))
	numRho := int(math.Round(float64((w+h)*2+1) / p.Rho))
	if numAngle < 1 || numRho < 1 {
		return nil, nil
	}
	irho := 1 / p.Rho
	cosT := make([]float64, numAngle)
	sinT := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		angle := float64(n) * p.Theta
		cosT[n] = math.Cos(angle) * irho
		sinT[n] = math.Sin(angle) * irho
	}
	rhoOffset := (numRho - 1) / 2
	accum := make([]int32, numAngle*numRho)
	vote := func(x, y int, delta int32) (int32, int) {
		best, bestN := int32(-1), 0
		for n := 0; n < numAngle; n++ {
			r := int(math.RoundToEven(float64(x)*cosT[n]+float64(y)*sinT[n])) + rhoOffset
			idx := n*numRho + r
			accum[idx] += delta
			if accum[idx] > best {
				best, bestN = accum[idx], n
			}
		}
		return best, bestN
	}

	mask := make([]bool, w*h)
	points := make([]int, 0, 1024)
	for i, v := range pix {
		if v != 0 {
			mask[i] = true
			points = append(points, i)
		}
	}

	rng := rand.New(rand.NewSource(p.Seed))
	var segments []Segment
	for count := len(points); count > 0; count-- {
		if count%linePollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		k := rng.Intn(count)
		pt := points[k]
		points[k] = points[count-1]
		if !mask[pt] {
			continue
		}
		x, y := pt%w, pt/w

		maxVal, maxN := vote(x, y, 1)
		if int(maxVal) < p.Threshold {
			continue
		}

		a := -sinT[maxN]
		b := cosT[maxN]
		x0, y0 := x, y
		var dx0, dy0 int
		xflag := math.Abs(a) > math.Abs(b)
		if xflag {
			dx0 = 1
			if a <= 0 {
				dx0 = -1
			}
			dy0 = int(math.RoundToEven(b * (1 << lineShift) / math.Abs(a)))
			y0 = (y0 << lineShift) + (1 << (lineShift - 1))
		} else {
			dy0 = 1
			if b <= 0 {
				dy0 = -1
			}
			dx0 = int(math.RoundToEven(a * (1 << lineShift) / math.Abs(b)))
			x0 = (x0 << lineShift) + (1 << (lineShift - 1))
		}
		unpack := func(px, py int) (int, int) {
			if xflag {
				return px, py >> lineShift
			}
			return px >> lineShift, py
		}

		var ends [2][2]int
		for k := 0; k < 2; k++ {
			dx, dy := dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			gap := 0
			for px, py := x0, y0; ; px, py = px+dx, py+dy {
				j1, i1 := unpack(px, py)
				if j1 < 0 || j1 >= w || i1 < 0 || i1 >= h {
					break
				}
				if mask[i1*w+j1] {
					gap = 0
					ends[k] = [2]int{j1, i1}
				} else if gap++; gap > p.MaxLineGap {
					break
				}
			}
		}

		good := absInt(ends[1][0]-ends[0][0]) >= p.MinLineLength ||
			absInt(ends[1][1]-ends[0][1]) >= p.MinLineLength

		for k := 0; k < 2; k++ {
			dx, dy := dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			for px, py := x0, y0; ; px, py = px+dx, py+dy {
				j1, i1 := unpack(px, py)
				idx := i1*w + j1
				if mask[idx] {
					if good {
						vote(j1, i1, -1)
					}
					mask[idx] = false
				}
				if j1 == ends[k][0] && i1 == ends[k][1] {
					break
				}
			}
		}

		if good {
			segments = append(segments, Segment{X1: ends[0][0], Y1: ends[0][1], X2: ends[1][0], Y2: ends[1][1]})
			if p.MaxLines > 0 && len(segments) >= p.MaxLines {
				break
			}
		}
	}
	return segments, nil
}
