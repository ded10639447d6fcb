package vision

import (
	"image"
	"math"
)

const (
	cannyNone   uint8 = 0
	cannyWeak   uint8 = 1
	cannyStrong uint8 = 2

	// tan(22.5°) in Q15
	tan22Q15 = 13573
)

// Canny runs the two-threshold Canny detector on gray using a 3x3 Sobel
// aperture and the L1 gradient norm. Edge pixels are 255, others 0.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	pix, w, h := plane(gray)
	edges := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return edges
	}
	if low > high {
		low, high = high, low
	}
	copy(edges.Pix, cannyPlane(pix, w, h, low, high))
	return edges
}

func cannyPlane(pix []uint8, w, h int, low, high float64) []uint8 {
	dx, dy := sobel(pix, w, h)
	lowT := int32(math.Floor(low))
	highT := int32(math.Floor(high))

	// Magnitudes live in a zero-padded frame so the suppression step never
	// needs bounds checks.
	mw := w + 2
	mag := make([]int32, mw*(h+2))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			mag[(y+1)*mw+x+1] = abs32(dx[i]) + abs32(dy[i])
		}
	}

	state := make([]uint8, w*h)
	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := (y+1)*mw + x + 1
			m := mag[c]
			if m <= lowT {
				continue
			}
			i := y*w + x
			xs, ys := abs32(dx[i]), abs32(dy[i])
			tg22x := xs * tan22Q15
			y15 := ys << 15

			var keep bool
			switch {
			case y15 < tg22x:
				keep = m > mag[c-1] && m >= mag[c+1]
			case y15 > tg22x+(xs<<16):
				keep = m > mag[c-mw] && m >= mag[c+mw]
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				keep = m > mag[c-mw-s] && m > mag[c+mw+s]
			}
			if !keep {
				continue
			}
			if m > highT {
				state[i] = cannyStrong
				stack = append(stack, i)
			} else {
				state[i] = cannyWeak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			if ny < 0 || ny >= h {
				continue
			}
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w {
					continue
				}
				n := ny*w + nx
				if state[n] == cannyWeak {
					state[n] = cannyStrong
					stack = append(stack, n)
				}
			}
		}
	}

	out := make([]uint8, w*h)
	for i, s := range state {
		if s == cannyStrong {
			out[i] = 255
		}
	}
	return out
}
