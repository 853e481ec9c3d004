// Package query answers read-only queries against a joined restaurant table.
//
// An Engine is built once per joined table and indexes row positions by city
// and by cuisine value in Roaring bitmaps. It supports two query shapes:
//
//   - TopNByCity: the n best-rated restaurants of a city, with cuisine and
//     cluster breakdowns of the returned rows.
//   - FilterRecords: every restaurant satisfying five conjunctive predicates
//     (city, cuisine substring, rating, cost and rating-count ranges).
//
// Queries never fail. An unknown city yields an empty result. Every result
// is a fresh slice; the indexed table is never mutated and an Engine is safe
// for concurrent use.
package query
