// Package vision implements the low-level image operators the feature
// extractor relies on: luminance conversion, Canny edge detection and Hough
// transforms for circles and line segments.
package vision

import "image"

// Grayscale converts an 8-bit raster to luminance using fixed-point BT.601
// weights (0.299, 0.587, 0.114) with round-half-up. Alpha is ignored.
func Grayscale(img *image.NRGBA) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := range dst {
			r, g, b := uint32(src[x*4]), uint32(src[x*4+1]), uint32(src[x*4+2])
			dst[x] = uint8((r*4899 + g*9617 + b*1868 + 1<<13) >> 14)
		}
	}
	return gray
}

// plane returns the pixels of gray as a tightly packed row-major slice.
func plane(gray *image.Gray) ([]uint8, int, int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if gray.Stride == w && b.Min == (image.Point{}) {
		return gray.Pix[:w*h], w, h
	}
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w:(y+1)*w], gray.Pix[off:off+w])
	}
	return pix, w, h
}

// CountNonZero returns the number of non-zero pixels.
func CountNonZero(gray *image.Gray) int {
	pix, _, _ := plane(gray)
	count := 0
	for _, v := range pix {
		if v != 0 {
			count++
		}
	}
	return count
}

// sobel computes 3x3 Sobel derivatives with replicated borders.
func sobel(pix []uint8, w, h int) (dx, dy []int32) {
	dx = make([]int32, w*h)
	dy = make([]int32, w*h)
	at := func(x, y int) int32 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return int32(pix[y*w+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)
			i := y*w + x
			dx[i] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			dy[i] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return dx, dy
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
