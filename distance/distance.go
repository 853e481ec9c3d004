package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SquaredL2 calculates the squared Euclidean distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Nearest returns the index of the centroid closest to vec and its squared
// distance. centroids is a flattened k×dim matrix. Ties go to the lowest index.
// Returns -1 when there are no centroids.
func Nearest(vec, centroids []float64, dim int) (int, float64) {
	k := len(centroids) / dim
	best := -1
	bestDist := math.Inf(1)
	for j := 0; j < k; j++ {
		d := SquaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best, bestDist
}
