package testutil

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hupe1980/dinecluster/table"
)

// Cities and Cuisines are the default pick-lists of Restaurants.
var (
	Cities   = []string{"Bangalore", "Mumbai", "Delhi", "Pune", "Chennai"}
	Cuisines = []string{"North Indian", "Chinese", "Italian Bistro", "South Indian", "Cafe", "Japanese"}
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: newRand(seed),
		seed: seed,
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5DEECE66D))
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newRand(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniformRange fills dst with values in [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*(maxVal-minVal)
	}
}

// UniformMatrix returns a rows×cols matrix with values in [-1, 1).
func (r *RNG) UniformMatrix(rows, cols int) table.Matrix {
	m := table.NewMatrix(rows, cols)
	r.FillUniformRange(m.Data, -1, 1)
	return m
}

// ClusteredFeatures generates a feature table whose rows are spread around
// clusters centers spaced 10 units apart on every axis. Row i belongs to
// blob i%clusters. Columns are named feature1, feature2, ...
func (r *RNG) ClusteredFeatures(num, dim, clusters int, spread float64) table.FeatureTable {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = make([]float64, dim)
		for j := range dim {
			// Alternate signs so blobs do not line up on the diagonal.
			sign := 1.0
			if (c+j)%2 == 1 {
				sign = -1
			}
			centers[c][j] = sign * float64(c) * 10
		}
	}

	names := make([]string, num)
	cols := make([]table.Column, dim)
	for j := range cols {
		cols[j] = table.NumericColumn(fmt.Sprintf("feature%d", j+1), make([]float64, num)...)
	}
	for i := range num {
		names[i] = RestaurantName(i)
		center := centers[i%clusters]
		for j := range dim {
			cols[j].Numeric[i] = center[j] + r.rand.NormFloat64()*spread
		}
	}

	return table.FeatureTable{Names: names, Columns: cols}
}

// RestaurantName returns the synthetic name of row i.
func RestaurantName(i int) string {
	return fmt.Sprintf("Restaurant %04d", i)
}

// Restaurants generates one canonical row per name. Cities are drawn with a
// Zipf skew so the first city dominates; ratings lie in [1.0, 5.0] with one
// decimal.
func (r *RNG) Restaurants(names, cities, cuisines []string) table.CanonicalTable {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(table.CanonicalTable, len(names))
	for i, name := range names {
		out[i] = table.CanonicalRecord{
			Name:        name,
			City:        cities[r.zipfLocked(len(cities), 1.2)],
			Cuisine:     cuisines[r.rand.IntN(len(cuisines))],
			Rating:      float64(10+r.rand.IntN(41)) / 10,
			RatingCount: int64(r.rand.IntN(10001)),
			Cost:        float64(100 * (1 + r.rand.IntN(30))),
		}
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/(k+1)^s.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var norm float64
	for k := 1; k <= n; k++ {
		norm += 1 / math.Pow(float64(k), s)
	}

	u := r.rand.Float64() * norm
	var cum float64
	for k := 1; k <= n; k++ {
		cum += 1 / math.Pow(float64(k), s)
		if u < cum {
			return k - 1
		}
	}
	return n - 1
}

// Dataset generates matching canonical and feature tables of num rows with
// the given number of feature blobs.
func Dataset(seed uint64, num, clusters int) (table.CanonicalTable, table.FeatureTable) {
	rng := NewRNG(seed)
	features := rng.ClusteredFeatures(num, 2, clusters, 0.5)
	return rng.Restaurants(features.Names, Cities, Cuisines), features
}
