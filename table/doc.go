// Package table defines the in-memory tabular data model shared by the
// clustering, join and query stages.
//
// Two tables enter the pipeline:
//
//   - CanonicalTable: one CanonicalRecord per restaurant (name, city, cuisine,
//     rating, rating count, cost). This is the table users browse.
//   - FeatureTable: the same restaurants keyed by name, with an arbitrary set
//     of columns. Only numeric columns take part in clustering.
//
// Tables are treated as immutable once handed to the pipeline. Every stage
// returns fresh slices and never writes into its inputs.
package table
