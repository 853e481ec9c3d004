// Package testutil provides testing utilities for dinecluster.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe RNG and generators for synthetic
// restaurant datasets.
//
// # Synthetic datasets
//
//	rng := testutil.NewRNG(4711)
//	features := rng.ClusteredFeatures(300, 2, 3, 0.5) // 3 well-separated blobs
//	canonical := rng.Restaurants(features.Names, testutil.Cities, testutil.Cuisines)
package testutil
