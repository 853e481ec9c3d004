// Package dinecluster recommends restaurants by combining a rating and cost
// dataset with a k-means clustering of per-restaurant feature vectors.
//
// # Pipeline
//
// The pipeline has four stages:
//
//	FeatureTable ─► scale ─► k-means ─► Assignment
//	                                        │
//	CanonicalTable ─────────────────────► join ─► JoinedTable ─► query
//
// Each stage is available as a function:
//
//	assignment, model, _ := dinecluster.Cluster(ctx, features, 5, 42)
//	joined, report, _ := dinecluster.Join(canonical, assignment)
//	top := dinecluster.TopNByCity(joined, "Bangalore", 5)
//	rows := dinecluster.FilterRecords(joined, query.DefaultFilter("Bangalore", "ital"))
//
// # Sessions
//
// A Recommender runs the pipeline once and answers any number of queries
// against the result:
//
//	rec, err := dinecluster.New(ctx, canonical, features,
//	    dinecluster.WithK(5),
//	    dinecluster.WithSeed(42),
//	    dinecluster.WithLogger(dinecluster.NewConsoleLogger(zerolog.InfoLevel)),
//	)
//	if err != nil {
//	    return err
//	}
//	top := rec.TopNByCity("Bangalore", 5)
//
// A Recommender is immutable once built and safe for concurrent use.
//
// # Determinism
//
// Clustering is seeded. The same feature table, k and seed always produce
// the same labels and centroids, independent of GOMAXPROCS.
//
// # Duplicated names
//
// Restaurant names are not unique. A canonical row whose name matches several
// feature rows is emitted once per match. JoinReport records every such name;
// WithStrictJoin turns the condition into ErrJoinKeyAmbiguity.
package dinecluster
