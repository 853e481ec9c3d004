package dinecluster

import (
	"github.com/hupe1980/dinecluster/internal/cache"
	"github.com/hupe1980/dinecluster/internal/join"
	"github.com/hupe1980/dinecluster/internal/kmeans"
	"github.com/hupe1980/dinecluster/internal/scale"
	"github.com/hupe1980/dinecluster/query"
)

// Defaults used when no option overrides them.
const (
	DefaultK       = 5
	DefaultSeed    = 42
	DefaultTopN    = query.DefaultTopN
	DefaultMaxIter = kmeans.DefaultMaxIter
	DefaultNInit   = 1
)

type options struct {
	k          int
	seed       uint64
	maxIter    int
	tolerance  float64
	nInit      int
	workers    int
	exclude    []string
	degenerate scale.Policy
	joinPolicy join.Policy
	topN       int
	scatter    [2]string

	logger           *Logger
	metricsCollector MetricsCollector
	memo             *cache.Memo
}

// Option configures the pipeline functions and New.
type Option func(*options)

func applyOptions(optFns ...Option) options {
	o := options{
		k:                DefaultK,
		seed:             DefaultSeed,
		maxIter:          DefaultMaxIter,
		tolerance:        kmeans.DefaultTolerance,
		nInit:            DefaultNInit,
		topN:             DefaultTopN,
		scatter:          [2]string{"feature1", "feature2"},
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithK sets the number of clusters. Used by New; Cluster takes k directly.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithSeed sets the clustering seed. Used by New; Cluster takes the seed directly.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMaxIter bounds the number of Lloyd iterations per run.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithTolerance sets the convergence tolerance, relative to the mean
// variance of the scaled feature columns.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithNInit runs k-means n times with seeds seed, seed+1, ... and keeps the
// run with the lowest inertia.
func WithNInit(n int) Option {
	return func(o *options) {
		o.nInit = n
	}
}

// WithWorkers caps the goroutines used by the assignment step.
// Results do not depend on the value.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithExcludeColumns removes numeric feature columns from clustering.
func WithExcludeColumns(names ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, names...)
	}
}

// WithFailOnDegenerate rejects zero-variance feature columns with
// ErrDegenerateColumn instead of scaling them to zero.
func WithFailOnDegenerate() Option {
	return func(o *options) {
		o.degenerate = scale.PolicyFail
	}
}

// WithStrictJoin fails the join with ErrJoinKeyAmbiguity when a restaurant
// name matches several feature rows.
func WithStrictJoin() Option {
	return func(o *options) {
		o.joinPolicy = join.PolicyStrict
	}
}

// WithTopN sets the default result size of Recommender.Top.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithScatterColumns sets the default axes of Recommender.DefaultScatter.
func WithScatterColumns(x, y string) Option {
	return func(o *options) {
		o.scatter = [2]string{x, y}
	}
}

// WithLogger configures structured logging. A nil logger disables logging.
//
// Example:
//
//	rec, _ := dinecluster.New(ctx, canonical, features,
//	    dinecluster.WithLogger(dinecluster.NewJSONLogger(zerolog.DebugLevel)),
//	)
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCache shares memoized pipeline results across calls. Results are keyed
// by a fingerprint of every input, so a cache never changes an answer.
func WithCache(c *Cache) Option {
	return func(o *options) {
		if c == nil {
			o.memo = nil
			return
		}
		o.memo = c.memo
	}
}

// Cache memoizes scaled matrices, cluster results and joined tables.
type Cache struct {
	memo *cache.Memo
}

// NewCache creates a cache holding at most entries results.
func NewCache(entries int) *Cache {
	if entries <= 0 {
		entries = cache.DefaultEntries
	}
	return &Cache{memo: cache.NewMemo(entries)}
}

// CacheStats holds cache counters.
type CacheStats = cache.Stats

// Stats returns hit, miss and eviction counts.
func (c *Cache) Stats() CacheStats {
	return c.memo.Stats()
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	return c.memo.Len()
}
