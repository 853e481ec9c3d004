package dinecluster

import (
	"context"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/dinecluster/internal/cache"
	"github.com/hupe1980/dinecluster/internal/join"
	"github.com/hupe1980/dinecluster/internal/kmeans"
	"github.com/hupe1980/dinecluster/internal/scale"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
)

// JoinReport summarizes a join: output rows, ambiguous names and their match
// counts, duplicated rows and unmatched rows.
type JoinReport = join.Report

// Cluster scales the numeric columns of ft and partitions its rows into k
// clusters with seeded k-means++.
//
// The result is deterministic: the same table, k, seed and options always
// produce identical labels and centroids.
func Cluster(ctx context.Context, ft table.FeatureTable, k int, seed uint64, optFns ...Option) (table.Assignment, *ClusterModel, error) {
	o := applyOptions(optFns...)
	o.k, o.seed = k, seed

	res, err := runCluster(ctx, ft, o)
	if err != nil {
		return table.Assignment{}, nil, err
	}
	return cloneAssignment(res.assignment), res.model.clone(), nil
}

// Join left-joins the canonical table with a cluster assignment on the exact
// restaurant name.
//
// Every canonical row appears at least once. Rows without a match carry the
// null label. A name matching several assignment rows is emitted once per
// match and listed in the report, unless WithStrictJoin is set.
func Join(r table.CanonicalTable, a table.Assignment, optFns ...Option) (table.JoinedTable, JoinReport, error) {
	o := applyOptions(optFns...)

	res, err := runJoin(context.Background(), r, a, o)
	if err != nil {
		return nil, res.report, err
	}
	return slices.Clone(res.table), cloneReport(res.report), nil
}

// TopNByCity returns the n best-rated restaurants of city with cuisine and
// cluster breakdowns. Unknown cities yield an empty result.
func TopNByCity(t table.JoinedTable, city string, n int) query.TopResult {
	return query.New(t).TopNByCity(city, n)
}

// FilterRecords returns the rows of t satisfying every predicate of f, in
// table order.
func FilterRecords(t table.JoinedTable, f query.Filter) table.JoinedTable {
	return query.New(t).FilterRecords(f)
}

type scaledResult struct {
	scaler *scale.Scaler
	matrix table.Matrix
}

type clusterResult struct {
	assignment table.Assignment
	model      *ClusterModel
}

type joinResult struct {
	table  table.JoinedTable
	report JoinReport
}

func scaleKey(ft table.FeatureTable, o options) uint64 {
	return table.Combine(
		ft.Fingerprint(),
		xxhash.Sum64String(strings.Join(o.exclude, "\x00")),
		uint64(o.degenerate),
	)
}

func runScale(ctx context.Context, ft table.FeatureTable, o options) (scaledResult, error) {
	key := cache.Key{Kind: cache.KindScaled, Digest: scaleKey(ft, o)}

	res, _, err := cache.Load(ctx, o.memo, key, func(context.Context) (scaledResult, error) {
		s, m, err := scale.FitTransform(ft,
			scale.WithExclude(o.exclude...),
			scale.WithPolicy(o.degenerate),
		)
		if err != nil {
			return scaledResult{}, translateError(err)
		}
		return scaledResult{scaler: s, matrix: m}, nil
	})
	if err != nil {
		return scaledResult{}, err
	}

	o.logger.LogDegenerate(ctx, res.scaler.Degenerate())
	return res, nil
}

func runCluster(ctx context.Context, ft table.FeatureTable, o options) (clusterResult, error) {
	start := time.Now()

	key := cache.Key{Kind: cache.KindCluster, Digest: table.Combine(
		scaleKey(ft, o),
		uint64(o.k),
		o.seed,
		uint64(o.maxIter),
		math.Float64bits(o.tolerance),
		uint64(o.nInit),
	)}

	res, cached, err := cache.Load(ctx, o.memo, key, func(ctx context.Context) (clusterResult, error) {
		sr, err := runScale(ctx, ft, o)
		if err != nil {
			return clusterResult{}, err
		}

		model, labels, err := kmeans.Train(ctx, sr.matrix, kmeans.Config{
			K:         o.k,
			Seed:      o.seed,
			MaxIter:   o.maxIter,
			Tolerance: o.tolerance,
			NInit:     o.nInit,
			Workers:   o.workers,
		})
		if err != nil {
			return clusterResult{}, translateError(err)
		}

		return clusterResult{
			assignment: table.Assignment{Names: slices.Clone(ft.Names), Labels: labels, K: o.k},
			model:      newClusterModel(model, sr.scaler),
		}, nil
	})

	d := time.Since(start)
	if err != nil {
		o.logger.LogCluster(ctx, ft.Len(), o.k, 0, 0, false, err)
		o.metricsCollector.RecordCluster(ft.Len(), o.k, 0, d, err)
		return clusterResult{}, err
	}

	o.logger.LogCluster(ctx, ft.Len(), o.k, res.model.Iterations, res.model.Inertia, cached, nil)
	o.metricsCollector.RecordCluster(ft.Len(), o.k, res.model.Iterations, d, nil)
	return res, nil
}

func runJoin(ctx context.Context, r table.CanonicalTable, a table.Assignment, o options) (joinResult, error) {
	start := time.Now()

	if err := join.CheckAssignment(a); err != nil {
		err = translateError(err)
		o.logger.LogJoin(ctx, JoinReport{}, err)
		o.metricsCollector.RecordJoin(0, 0, 0, time.Since(start), err)
		return joinResult{}, err
	}

	key := cache.Key{Kind: cache.KindJoined, Digest: table.Combine(
		r.Fingerprint(),
		a.Fingerprint(),
		uint64(o.joinPolicy),
	)}

	res, _, err := cache.Load(ctx, o.memo, key, func(context.Context) (joinResult, error) {
		t, report, err := join.Left(r, a, o.joinPolicy)
		if err != nil {
			return joinResult{report: report}, translateError(err)
		}
		return joinResult{table: t, report: report}, nil
	})

	d := time.Since(start)
	o.logger.LogJoin(ctx, res.report, err)
	o.metricsCollector.RecordJoin(res.report.Rows, res.report.Duplicated, res.report.Unmatched, d, err)
	return res, err
}

func cloneAssignment(a table.Assignment) table.Assignment {
	return table.Assignment{Names: slices.Clone(a.Names), Labels: slices.Clone(a.Labels), K: a.K}
}

func cloneReport(r JoinReport) JoinReport {
	r.Ambiguous = maps.Clone(r.Ambiguous)
	return r
}
