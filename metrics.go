package dinecluster

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCluster is called after each clustering run.
	RecordCluster(rows, k, iterations int, duration time.Duration, err error)

	// RecordJoin is called after each join. duplicated and unmatched come
	// from the join report.
	RecordJoin(rows, duplicated, unmatched int, duration time.Duration, err error)

	// RecordQuery is called after each query. kind is "top" or "filter".
	RecordQuery(kind string, rows int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCluster(int, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordJoin(int, int, int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration)            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ClusterCount      atomic.Int64
	ClusterErrors     atomic.Int64
	ClusterIterations atomic.Int64
	ClusterTotalNanos atomic.Int64
	JoinCount         atomic.Int64
	JoinErrors        atomic.Int64
	JoinDuplicated    atomic.Int64
	JoinUnmatched     atomic.Int64
	TopCount          atomic.Int64
	FilterCount       atomic.Int64
	QueryRows         atomic.Int64
	QueryTotalNanos   atomic.Int64
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(rows, k, iterations int, duration time.Duration, err error) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClusterErrors.Add(1)
		return
	}
	b.ClusterIterations.Add(int64(iterations))
}

// RecordJoin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJoin(rows, duplicated, unmatched int, duration time.Duration, err error) {
	b.JoinCount.Add(1)
	if err != nil {
		b.JoinErrors.Add(1)
		return
	}
	b.JoinDuplicated.Add(int64(duplicated))
	b.JoinUnmatched.Add(int64(unmatched))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(kind string, rows int, duration time.Duration) {
	switch kind {
	case QueryTop:
		b.TopCount.Add(1)
	case QueryFilter:
		b.FilterCount.Add(1)
	}
	b.QueryRows.Add(int64(rows))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ClusterCount:    b.ClusterCount.Load(),
		ClusterErrors:   b.ClusterErrors.Load(),
		ClusterAvgNanos: avg(b.ClusterTotalNanos.Load(), b.ClusterCount.Load()),
		ClusterAvgIters: avg(b.ClusterIterations.Load(), b.ClusterCount.Load()-b.ClusterErrors.Load()),
		JoinCount:       b.JoinCount.Load(),
		JoinErrors:      b.JoinErrors.Load(),
		JoinDuplicated:  b.JoinDuplicated.Load(),
		JoinUnmatched:   b.JoinUnmatched.Load(),
		TopCount:        b.TopCount.Load(),
		FilterCount:     b.FilterCount.Load(),
		QueryRows:       b.QueryRows.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.TopCount.Load()+b.FilterCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count <= 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ClusterCount    int64
	ClusterErrors   int64
	ClusterAvgNanos int64
	ClusterAvgIters int64
	JoinCount       int64
	JoinErrors      int64
	JoinDuplicated  int64
	JoinUnmatched   int64
	TopCount        int64
	FilterCount     int64
	QueryRows       int64
	QueryAvgNanos   int64
}
