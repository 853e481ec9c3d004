package kmeans

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/hupe1980/dinecluster/distance"
	"github.com/hupe1980/dinecluster/table"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMaxIter bounds the number of Lloyd iterations.
	DefaultMaxIter = 300
	// DefaultTolerance is relative to the mean column variance of the input.
	DefaultTolerance = 1e-4

	// seedMix is the second PCG word, derived from the seed.
	seedMix = 0x9E3779B97F4A7C15

	// parallelThreshold is the row count below which assignment runs inline.
	parallelThreshold = 2048
)

var (
	// ErrEmptyInput is returned when the matrix has no rows.
	ErrEmptyInput = errors.New("kmeans: empty input")
	// ErrInvalidClusterCount is returned when k is outside [1, rows].
	ErrInvalidClusterCount = errors.New("kmeans: invalid cluster count")
)

// InvalidClusterCountError describes a k outside [1, rows].
type InvalidClusterCountError struct {
	K    int
	Rows int
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("kmeans: invalid cluster count %d for %d rows", e.K, e.Rows)
}

func (e *InvalidClusterCountError) Unwrap() error { return ErrInvalidClusterCount }

// Config controls a training run.
type Config struct {
	K         int
	Seed      uint64
	MaxIter   int
	Tolerance float64
	NInit     int
	Workers   int
}

func (c Config) withDefaults() Config {
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.NInit <= 0 {
		c.NInit = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Train clusters the rows of data into cfg.K clusters.
// It returns the fitted model and one label per row.
func Train(ctx context.Context, data table.Matrix, cfg Config) (*Model, []int, error) {
	cfg = cfg.withDefaults()

	if data.Rows == 0 {
		return nil, nil, ErrEmptyInput
	}
	if cfg.K < 1 || cfg.K > data.Rows {
		return nil, nil, &InvalidClusterCountError{K: cfg.K, Rows: data.Rows}
	}

	tol := scaledTolerance(data, cfg.Tolerance)

	var (
		best       *Model
		bestLabels []int
	)
	for r := 0; r < cfg.NInit; r++ {
		seed := cfg.Seed + uint64(r)
		rng := rand.New(rand.NewPCG(seed, seed^seedMix))

		m, labels, err := run(ctx, data, cfg, rng, tol)
		if err != nil {
			return nil, nil, err
		}
		if best == nil || m.Inertia < best.Inertia {
			best, bestLabels = m, labels
		}
	}

	best.Seed = cfg.Seed
	return best, bestLabels, nil
}

// scaledTolerance converts a relative tolerance into an absolute bound on the
// total squared centroid shift.
func scaledTolerance(data table.Matrix, tol float64) float64 {
	if data.Cols == 0 {
		return 0
	}
	col := make([]float64, data.Rows)
	var sum float64
	for j := 0; j < data.Cols; j++ {
		for i := 0; i < data.Rows; i++ {
			col[i] = data.At(i, j)
		}
		_, v := stat.PopMeanVariance(col, nil)
		sum += v
	}
	return tol * sum / float64(data.Cols)
}

func run(ctx context.Context, data table.Matrix, cfg Config, rng *rand.Rand, tol float64) (*Model, []int, error) {
	n, dim, k := data.Rows, data.Cols, cfg.K

	centroids := initPlusPlus(data, k, rng)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	dists := make([]float64, n)
	counts := make([]int, k)
	next := make([]float64, k*dim)

	iterations := 0
	converged := false
	settled := false
	for iterations < cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		iterations++

		changed, err := assign(ctx, data, centroids, k, labels, dists, cfg.Workers)
		if err != nil {
			return nil, nil, err
		}
		if !changed {
			converged, settled = true, true
			break
		}

		update(data, labels, dists, counts, next, k)

		var shift float64
		for j := 0; j < k; j++ {
			shift += distance.SquaredL2(centroids[j*dim:(j+1)*dim], next[j*dim:(j+1)*dim])
		}
		centroids, next = next, centroids

		if shift <= tol {
			converged = true
			break
		}
	}

	// Labels must match the final centroids.
	if !settled {
		if _, err := assign(ctx, data, centroids, k, labels, dists, cfg.Workers); err != nil {
			return nil, nil, err
		}
	}

	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	return &Model{
		K:          k,
		Dim:        dim,
		Centroids:  centroids,
		Inertia:    floats.Sum(dists),
		Iterations: iterations,
		Converged:  converged,
		Sizes:      sizes,
	}, labels, nil
}

// initPlusPlus picks k initial centroids with seeded k-means++.
func initPlusPlus(data table.Matrix, k int, rng *rand.Rand) []float64 {
	n, dim := data.Rows, data.Cols
	centroids := make([]float64, k*dim)
	chosen := make([]bool, n)

	first := rng.IntN(n)
	chosen[first] = true
	copy(centroids[:dim], data.Row(first))

	minDist := make([]float64, n)
	for i := 0; i < n; i++ {
		minDist[i] = distance.SquaredL2(data.Row(i), centroids[:dim])
	}

	for c := 1; c < k; c++ {
		idx := -1
		if total := floats.Sum(minDist); total > 0 {
			u := rng.Float64() * total
			var cum float64
			last := -1
			for i, d := range minDist {
				if d <= 0 {
					continue
				}
				last = i
				cum += d
				if cum >= u {
					idx = i
					break
				}
			}
			if idx < 0 {
				// Rounding left the running sum just short of u.
				idx = last
			}
		} else {
			for i := 0; i < n; i++ {
				if !chosen[i] {
					idx = i
					break
				}
			}
			if idx < 0 {
				idx = 0
			}
		}

		chosen[idx] = true
		center := centroids[c*dim : (c+1)*dim]
		copy(center, data.Row(idx))
		for i := 0; i < n; i++ {
			if d := distance.SquaredL2(data.Row(i), center); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centroids
}

// assign labels every row with its nearest centroid. Rows are split into
// fixed contiguous chunks and every worker writes only its own rows.
func assign(ctx context.Context, data table.Matrix, centroids []float64, k int, labels []int, dists []float64, workers int) (bool, error) {
	n := data.Rows
	if workers <= 1 || n < parallelThreshold {
		return assignRange(data, centroids, labels, dists, 0, n), nil
	}

	chunk := (n + workers - 1) / workers
	changed := make([]bool, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed[w] = assignRange(data, centroids, labels, dists, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	return slices.Contains(changed, true), nil
}

func assignRange(data table.Matrix, centroids []float64, labels []int, dists []float64, lo, hi int) bool {
	changed := false
	for i := lo; i < hi; i++ {
		best, d := distance.Nearest(data.Row(i), centroids, data.Cols)
		dists[i] = d
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// update recomputes centroids into next as the mean of their rows.
// Empty clusters take the row farthest from its current centroid.
func update(data table.Matrix, labels []int, dists []float64, counts []int, next []float64, k int) {
	dim := data.Cols

	for j := range counts {
		counts[j] = 0
	}
	for _, l := range labels {
		counts[l]++
	}

	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, l := range labels {
			if counts[l] > 1 && dists[i] > farDist {
				far, farDist = i, dists[i]
			}
		}
		if far < 0 {
			continue
		}
		counts[labels[far]]--
		labels[far] = j
		counts[j] = 1
		dists[far] = 0
	}

	for i := range next {
		next[i] = 0
	}
	for i, l := range labels {
		floats.Add(next[l*dim:(l+1)*dim], data.Row(i))
	}
	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			floats.Scale(1/float64(counts[j]), next[j*dim:(j+1)*dim])
		}
	}
}

// Model is a fitted set of centroids.
type Model struct {
	K          int       `json:"k"`
	Seed       uint64    `json:"seed"`
	Dim        int       `json:"dim"`
	Centroids  []float64 `json:"centroids"`
	Inertia    float64   `json:"inertia"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Sizes      []int     `json:"sizes"`
}

// Centroid returns centroid j as a subslice of the model.
func (m *Model) Centroid(j int) []float64 {
	return m.Centroids[j*m.Dim : (j+1)*m.Dim]
}

// Predict returns the cluster of an already-scaled vector.
func (m *Model) Predict(vec []float64) (int, error) {
	if len(vec) != m.Dim {
		return -1, fmt.Errorf("kmeans: vector has dimension %d, want %d", len(vec), m.Dim)
	}
	id, _ := distance.Nearest(vec, m.Centroids, m.Dim)
	return id, nil
}

type centroidDist struct {
	id   int
	dist float64
}

// Nearest returns the ids of the n centroids closest to vec, closest first.
func (m *Model) Nearest(vec []float64, n int) ([]int, error) {
	if len(vec) != m.Dim {
		return nil, fmt.Errorf("kmeans: vector has dimension %d, want %d", len(vec), m.Dim)
	}
	n = min(n, m.K)

	dists := make([]centroidDist, m.K)
	for j := 0; j < m.K; j++ {
		dists[j] = centroidDist{id: j, dist: distance.SquaredL2(vec, m.Centroid(j))}
	}
	slices.SortStableFunc(dists, func(a, b centroidDist) int {
		return cmp.Compare(a.dist, b.dist)
	})

	result := make([]int, n)
	for i := 0; i < n; i++ {
		result[i] = dists[i].id
	}
	return result, nil
}

// WithinCluster returns the inertia contribution of each cluster.
func (m *Model) WithinCluster(data table.Matrix, labels []int) []float64 {
	out := make([]float64, m.K)
	for i, l := range labels {
		out[l] += distance.SquaredL2(data.Row(i), m.Centroid(l))
	}
	return out
}
