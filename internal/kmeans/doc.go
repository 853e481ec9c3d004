// Package kmeans implements deterministic k-means clustering.
//
// Centroids are initialized with seeded k-means++ and refined with Lloyd's
// algorithm under a bounded iteration count. Given the same matrix, k and
// seed, Train returns bit-identical labels and centroids regardless of how
// many workers run the assignment step.
//
// # Initialization
//
// The generator is math/rand/v2's PCG seeded with (seed, seed^0x9E3779B97F4A7C15).
// The first centroid is row rng.IntN(n). Every following centroid is drawn
// with probability proportional to D(x), the squared distance to the closest
// centroid chosen so far: u = rng.Float64()*ΣD, and the first row in row
// order with D(x) > 0 whose running sum reaches u is taken. When ΣD is zero
// the lowest-index row not yet chosen is used.
//
// # Iteration
//
// Assignment ties go to the lowest centroid index. Centroids are recomputed
// by summing rows in row order. An empty cluster is re-seeded with the row
// farthest from its current centroid. Iteration stops when no label changes,
// when the total squared centroid shift falls below the tolerance, or after
// MaxIter rounds. With NInit > 1, run r uses seed+r and the run with the
// lowest inertia wins.
package kmeans
