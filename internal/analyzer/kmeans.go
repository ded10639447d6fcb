package analyzer

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type kmeansConfig struct {
	k         int
	restarts  int
	maxIter   int
	tolerance float64
}

type clustering struct {
	centroids [][]float64
	inertia   float64
}

// kmeans clusters points with k-means++ seeding and Lloyd iterations,
// returning the centroids of the lowest-inertia run. Identical centroids
// are possible when the data has fewer distinct values than k.
func kmeans(points [][]float64, cfg kmeansConfig, rng *rand.Rand) [][]float64 {
	if len(points) == 0 || cfg.k <= 0 {
		return nil
	}
	k := cfg.k
	if k > len(points) {
		k = len(points)
	}
	// tolerance is relative to the mean per-channel variance
	threshold := cfg.tolerance * meanVariance(points)

	best := clustering{inertia: math.Inf(1)}
	for run := 0; run < cfg.restarts; run++ {
		result := lloyd(points, seedPlusPlus(points, k, rng), cfg.maxIter, threshold)
		if result.inertia < best.inertia {
			best = result
		}
	}
	return best.centroids
}

func meanVariance(points [][]float64) float64 {
	dim := len(points[0])
	column := make([]float64, len(points))
	total := 0.0
	for d := 0; d < dim; d++ {
		for i, p := range points {
			column[i] = p[d]
		}
		total += stat.PopVariance(column, nil)
	}
	return total / float64(dim)
}

// seedPlusPlus picks k initial centroids, each drawn with probability
// proportional to its squared distance from the nearest centroid so far.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := append([]float64(nil), points[rng.Intn(len(points))]...)
	centroids = append(centroids, first)

	nearest := make([]float64, len(points))
	for i, p := range points {
		nearest[i] = sqDist(p, first)
	}
	for len(centroids) < k {
		idx := len(points) - 1
		total := floats.Sum(nearest)
		if total <= 0 {
			idx = rng.Intn(len(points))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range nearest {
				acc += d
				if acc > target {
					idx = i
					break
				}
			}
		}
		c := append([]float64(nil), points[idx]...)
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centroids
}

func lloyd(points, centroids [][]float64, maxIter int, threshold float64) clustering {
	k, dim := len(centroids), len(points[0])
	labels := make([]int, len(points))
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, k)

	for iter := 0; iter < maxIter; iter++ {
		assign(points, centroids, labels)
		for c := range sums {
			for d := range sums[c] {
				sums[c][d] = 0
			}
			counts[c] = 0
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(sums[c], centroids[c])
			copy(centroids[c], sums[c])
		}
		if shift <= threshold {
			break
		}
	}
	return clustering{centroids: centroids, inertia: assign(points, centroids, labels)}
}

// assign labels each point with its nearest centroid (lowest index on ties)
// and returns the total squared distance.
func assign(points, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, p := range points {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(p, centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return inertia
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
