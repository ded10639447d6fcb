package analyzer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/anime-shed/folkart-inspector/internal/vision"
)

const hsvShift = 12

// satDivTable[v] is round(255 << hsvShift / v), used to compute 8-bit HSV
// saturation without a division per pixel.
var satDivTable = func() [256]int32 {
	var table [256]int32
	for v := 1; v < 256; v++ {
		table[v] = int32(math.Round(float64(255<<hsvShift) / float64(v)))
	}
	return table
}()

// metricsCalculator implements MetricsCalculator. Large rasters are split
// into horizontal strips processed in parallel; per-strip sums are integers
// so the result does not depend on the number of strips.
type metricsCalculator struct {
	workers int
}

// NewMetricsCalculator creates a metrics calculator using one strip per CPU
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{workers: runtime.NumCPU()}
}

// strips divides height rows into contiguous ranges, one per worker.
func (mc *metricsCalculator) strips(height int) [][2]int {
	numWorkers := mc.workers
	if height < numWorkers {
		numWorkers = height
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	ranges := make([][2]int, 0, numWorkers)
	for startY := 0; startY < height; startY += rowsPerWorker {
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		ranges = append(ranges, [2]int{startY, endY})
	}
	return ranges
}

// ColorMeans returns the mean 8-bit HSV saturation and value
func (mc *metricsCalculator) ColorMeans(img *image.NRGBA) (saturation, value float64) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0
	}

	ranges := mc.strips(height)
	sums := make([][2]uint64, len(ranges))
	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i, startY, endY int) {
			defer wg.Done()

			var sat, val uint64
			for y := startY; y < endY; y++ {
				row := img.Pix[img.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
				for x := 0; x < width; x++ {
					s, v := saturationValue(row[x*4], row[x*4+1], row[x*4+2])
					sat += uint64(s)
					val += uint64(v)
				}
			}
			sums[i] = [2]uint64{sat, val}
		}(i, r[0], r[1])
	}
	wg.Wait()

	var totalSat, totalVal uint64
	for _, s := range sums {
		totalSat += s[0]
		totalVal += s[1]
	}
	pixelCount := float64(width * height)
	return float64(totalSat) / pixelCount, float64(totalVal) / pixelCount
}

// SpatialBalance returns the mean luminance of columns [0, w/2) and
// [w/2, w). A single-column image has no left half and reports NaN for it,
// which compares neither balanced with nor brighter than the right half.
func (mc *metricsCalculator) SpatialBalance(gray *image.Gray) (left, right float64) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0
	}

	columns := make([]float64, width)
	for y := 0; y < height; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			columns[x] += float64(row[x])
		}
	}

	mid := width / 2
	right = floats.Sum(columns[mid:]) / float64((width-mid)*height)
	if mid == 0 {
		return math.NaN(), right
	}
	left = floats.Sum(columns[:mid]) / float64(mid*height)
	return left, right
}

// EdgeDensity returns the fraction of non-zero pixels in an edge map
func (mc *metricsCalculator) EdgeDensity(edges *image.Gray) float64 {
	bounds := edges.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	return float64(vision.CountNonZero(edges)) / float64(total)
}

// saturationValue converts RGB to the S and V channels of 8-bit HSV:
// V = max(R,G,B), S = 255*(V-min)/V rounded.
func saturationValue(r, g, b uint8) (s, v uint8) {
	maxC, minC := r, r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}
	diff := int32(maxC - minC)
	sat := (diff*satDivTable[maxC] + 1<<(hsvShift-1)) >> hsvShift
	return uint8(sat), maxC
}
