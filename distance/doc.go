// Package distance provides the float64 distance kernels used by clustering.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	e := distance.L2(a, b)
//	id, d := distance.Nearest(vec, centroids, dim)
package distance
