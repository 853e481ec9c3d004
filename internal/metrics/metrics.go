package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hupe1980/dinecluster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dinecluster"

// Collector holds every dinecluster series.
type Collector struct {
	clusterDuration   prometheus.Histogram
	clusterIterations prometheus.Histogram
	clusterErrors     prometheus.Counter
	clusterRows       prometheus.Gauge

	joinDuration   prometheus.Histogram
	joinErrors     prometheus.Counter
	joinDuplicated prometheus.Gauge
	joinUnmatched  prometheus.Gauge

	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	reg prometheus.Registerer
}

var _ dinecluster.MetricsCollector = (*Collector)(nil)

// New registers the series on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		clusterDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_duration_seconds",
			Help:      "Duration of clustering runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		clusterIterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_iterations",
			Help:      "Lloyd iterations of the winning k-means run",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 300},
		}),
		clusterErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_errors_total",
			Help:      "Total number of failed clustering runs",
		}),
		clusterRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_rows",
			Help:      "Rows in the most recent clustering run",
		}),
		joinDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "join_duration_seconds",
			Help:      "Duration of dataset joins in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		joinErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_errors_total",
			Help:      "Total number of failed joins",
		}),
		joinDuplicated: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "join_duplicated_rows",
			Help:      "Extra rows produced by ambiguous names in the most recent join",
		}),
		joinUnmatched: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "join_unmatched_rows",
			Help:      "Canonical rows without a cluster label in the most recent join",
		}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of queries in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"kind"}),
		queryRows: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned per query",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"kind"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reg: reg,
	}
}

// RecordCluster implements dinecluster.MetricsCollector.
func (c *Collector) RecordCluster(rows, _, iterations int, duration time.Duration, err error) {
	c.clusterDuration.Observe(duration.Seconds())
	if err != nil {
		c.clusterErrors.Inc()
		return
	}
	c.clusterIterations.Observe(float64(iterations))
	c.clusterRows.Set(float64(rows))
}

// RecordJoin implements dinecluster.MetricsCollector.
func (c *Collector) RecordJoin(_, duplicated, unmatched int, duration time.Duration, err error) {
	c.joinDuration.Observe(duration.Seconds())
	if err != nil {
		c.joinErrors.Inc()
		return
	}
	c.joinDuplicated.Set(float64(duplicated))
	c.joinUnmatched.Set(float64(unmatched))
}

// RecordQuery implements dinecluster.MetricsCollector.
func (c *Collector) RecordQuery(kind string, rows int, duration time.Duration) {
	c.queryDuration.WithLabelValues(kind).Observe(duration.Seconds())
	c.queryRows.WithLabelValues(kind).Observe(float64(rows))
}

// WatchCache exports the hit, miss and size counters of cache.
func (c *Collector) WatchCache(cache *dinecluster.Cache) {
	if cache == nil {
		return
	}
	f := promauto.With(c.reg)

	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Memo cache hits",
	}, func() float64 { return float64(cache.Stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Memo cache misses",
	}, func() float64 { return float64(cache.Stats().Misses) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Memo cache entries",
	}, func() float64 { return float64(cache.Len()) })
}

// Middleware records request counts and latency by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
