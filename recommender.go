package dinecluster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/dinecluster/internal/join"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
)

// Query kinds reported to MetricsCollector.RecordQuery.
const (
	QueryTop    = "top"
	QueryFilter = "filter"
)

// Params records the parameters a Recommender was built with.
type Params struct {
	K          int     `json:"k"`
	Seed       uint64  `json:"seed"`
	MaxIter    int     `json:"max_iter"`
	Tolerance  float64 `json:"tolerance"`
	NInit      int     `json:"n_init"`
	TopN       int     `json:"top_n"`
	StrictJoin bool    `json:"strict_join"`
}

// Recommender is one clustering session: the fitted model, the joined table
// and a query engine over it. It is immutable after New and safe for
// concurrent use.
type Recommender struct {
	id        string
	createdAt time.Time
	opts      options
	logger    *Logger

	features   table.FeatureTable
	model      *ClusterModel
	assignment table.Assignment
	report     JoinReport
	engine     *query.Engine
}

// New clusters features, joins the labels onto canonical and indexes the
// result for queries.
func New(ctx context.Context, canonical table.CanonicalTable, features table.FeatureTable, optFns ...Option) (*Recommender, error) {
	o := applyOptions(optFns...)

	id := uuid.NewString()
	o.logger = o.logger.WithSession(id)

	cr, err := runCluster(ctx, features, o)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	jr, err := runJoin(ctx, canonical, cr.assignment, o)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	r := &Recommender{
		id:         id,
		createdAt:  time.Now(),
		opts:       o,
		logger:     o.logger,
		features:   features,
		model:      cr.model,
		assignment: cr.assignment,
		report:     jr.report,
		engine:     query.New(jr.table),
	}

	r.logger.Info().
		Int("rows", r.engine.Len()).
		Int("cities", len(r.engine.Cities())).
		Int("k", o.k).
		Uint64("seed", o.seed).
		Msg("recommender ready")

	return r, nil
}

// ID returns the session id.
func (r *Recommender) ID() string { return r.id }

// CreatedAt returns when the session was built.
func (r *Recommender) CreatedAt() time.Time { return r.createdAt }

// Params returns the clustering and query parameters of the session.
func (r *Recommender) Params() Params {
	return Params{
		K:          r.opts.k,
		Seed:       r.opts.seed,
		MaxIter:    r.opts.maxIter,
		Tolerance:  r.opts.tolerance,
		NInit:      r.opts.nInit,
		TopN:       r.opts.topN,
		StrictJoin: r.opts.joinPolicy == join.PolicyStrict,
	}
}

// Len returns the number of joined rows.
func (r *Recommender) Len() int { return r.engine.Len() }

// TopNByCity returns the n best-rated restaurants of city.
func (r *Recommender) TopNByCity(city string, n int) query.TopResult {
	start := time.Now()
	res := r.engine.TopNByCity(city, n)
	r.observe(QueryTop, len(res.Rows), start)
	return res
}

// Top returns the best-rated restaurants of city using the session's top-N.
func (r *Recommender) Top(city string) query.TopResult {
	return r.TopNByCity(city, r.opts.topN)
}

// FilterRecords returns the rows satisfying every predicate of f.
func (r *Recommender) FilterRecords(f query.Filter) table.JoinedTable {
	start := time.Now()
	rows := r.engine.FilterRecords(f)
	r.observe(QueryFilter, len(rows), start)
	return rows
}

func (r *Recommender) observe(kind string, rows int, start time.Time) {
	r.opts.metricsCollector.RecordQuery(kind, rows, time.Since(start))
	r.logger.LogQuery(context.Background(), kind, rows)
}

// Cities returns the distinct cities in table order.
func (r *Recommender) Cities() []string { return r.engine.Cities() }

// Cuisines returns the distinct cuisines in table order.
func (r *Recommender) Cuisines() []string { return r.engine.Cuisines() }

// Records returns a copy of the full joined table.
func (r *Recommender) Records() table.JoinedTable { return r.engine.Records() }

// Model returns a copy of the fitted cluster model.
func (r *Recommender) Model() *ClusterModel { return r.model.clone() }

// Assignment returns a copy of the per-feature-row cluster labels.
func (r *Recommender) Assignment() table.Assignment { return cloneAssignment(r.assignment) }

// JoinReport returns the report of the session's join.
func (r *Recommender) JoinReport() JoinReport { return cloneReport(r.report) }

// Predict labels a raw feature vector keyed by column name.
func (r *Recommender) Predict(raw map[string]float64) (int, error) {
	return r.model.PredictNamed(raw)
}

// ScatterPoint is one feature row of a scatter plot.
type ScatterPoint struct {
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"`
}

// Scatter is the cluster distribution over two raw feature columns.
type Scatter struct {
	X      string         `json:"x"`
	Y      string         `json:"y"`
	Points []ScatterPoint `json:"points"`
}

// Scatter returns every feature row plotted on columns x and y with its
// cluster label. Both columns must be numeric feature columns.
func (r *Recommender) Scatter(x, y string) (Scatter, error) {
	xs, err := r.numericColumn(x)
	if err != nil {
		return Scatter{}, err
	}
	ys, err := r.numericColumn(y)
	if err != nil {
		return Scatter{}, err
	}

	points := make([]ScatterPoint, len(r.assignment.Labels))
	for i, l := range r.assignment.Labels {
		points[i] = ScatterPoint{Name: r.features.Names[i], X: xs[i], Y: ys[i], Cluster: l}
	}
	return Scatter{X: x, Y: y, Points: points}, nil
}

// DefaultScatter returns the scatter over the session's default columns.
func (r *Recommender) DefaultScatter() (Scatter, error) {
	return r.Scatter(r.opts.scatter[0], r.opts.scatter[1])
}

func (r *Recommender) numericColumn(name string) ([]float64, error) {
	c, ok := r.features.Column(name)
	if !ok || c.Kind != table.KindNumeric {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return c.Numeric, nil
}
