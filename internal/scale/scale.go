package scale

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/dinecluster/table"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyInput is returned when the feature table has no rows.
	ErrEmptyInput = errors.New("scale: empty input")
	// ErrNoNumericColumns is returned when no column qualifies as a feature.
	ErrNoNumericColumns = errors.New("scale: no numeric feature columns")
	// ErrDegenerateColumn is returned under PolicyFail for zero-variance columns.
	ErrDegenerateColumn = errors.New("scale: zero-variance column")
	// ErrNonFiniteValue is returned when a feature value is NaN or infinite.
	ErrNonFiniteValue = errors.New("scale: non-finite value")
	// ErrUnknownColumn is returned when a fitted column is missing at transform time.
	ErrUnknownColumn = errors.New("scale: unknown column")
)

// Policy controls how zero-variance columns are handled.
type Policy uint8

const (
	// PolicyZero maps every value of a zero-variance column to 0.
	PolicyZero Policy = iota
	// PolicyFail rejects the table with ErrDegenerateColumn.
	PolicyFail
)

// Stats are the fitted statistics of one column.
type Stats struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// Degenerate reports whether the column is scaled to a constant 0.
func (s Stats) Degenerate() bool { return s.Std == 0 }

type options struct {
	exclude []string
	policy  Policy
}

// Option configures Fit.
type Option func(*options)

// WithExclude removes additional columns from the feature set.
func WithExclude(names ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, names...)
	}
}

// WithPolicy sets the zero-variance policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// Scaler holds fitted per-column statistics.
type Scaler struct {
	stats []Stats
}

// Fit computes the per-column mean and population standard deviation of
// every numeric feature column.
func Fit(ft table.FeatureTable, optFns ...Option) (*Scaler, error) {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}

	if ft.Len() == 0 {
		return nil, ErrEmptyInput
	}
	if err := ft.Validate(); err != nil {
		return nil, err
	}

	cols := ft.NumericColumns(o.exclude...)
	if len(cols) == 0 {
		return nil, ErrNoNumericColumns
	}

	stats := make([]Stats, 0, len(cols))
	for _, c := range cols {
		if err := checkFinite(c); err != nil {
			return nil, err
		}
		mean, std := stat.PopMeanStdDev(c.Numeric, nil)
		if nearZero(std, mean) {
			if o.policy == PolicyFail {
				return nil, fmt.Errorf("%w: %q", ErrDegenerateColumn, c.Name)
			}
			std = 0
		}
		stats = append(stats, Stats{Column: c.Name, Mean: mean, Std: std})
	}

	return &Scaler{stats: stats}, nil
}

// FitTransform fits a scaler on ft and returns the scaled matrix.
func FitTransform(ft table.FeatureTable, optFns ...Option) (*Scaler, table.Matrix, error) {
	s, err := Fit(ft, optFns...)
	if err != nil {
		return nil, table.Matrix{}, err
	}
	m, err := s.Transform(ft)
	if err != nil {
		return nil, table.Matrix{}, err
	}
	return s, m, nil
}

// Columns returns the fitted column names in matrix column order.
func (s *Scaler) Columns() []string {
	names := make([]string, len(s.stats))
	for i, st := range s.stats {
		names[i] = st.Column
	}
	return names
}

// Stats returns a copy of the fitted statistics.
func (s *Scaler) Stats() []Stats {
	return slices.Clone(s.stats)
}

// Degenerate returns the names of zero-variance columns.
func (s *Scaler) Degenerate() []string {
	var out []string
	for _, st := range s.stats {
		if st.Degenerate() {
			out = append(out, st.Column)
		}
	}
	return out
}

// Transform scales ft with the fitted statistics.
// The returned matrix has one row per feature row, in table order.
func (s *Scaler) Transform(ft table.FeatureTable) (table.Matrix, error) {
	m := table.NewMatrix(ft.Len(), len(s.stats))
	for j, st := range s.stats {
		c, ok := ft.Column(st.Column)
		if !ok || c.Kind != table.KindNumeric {
			return table.Matrix{}, fmt.Errorf("%w: %q", ErrUnknownColumn, st.Column)
		}
		if c.Len() != m.Rows {
			return table.Matrix{}, fmt.Errorf("column %q has %d values, want %d", c.Name, c.Len(), m.Rows)
		}
		if err := checkFinite(c); err != nil {
			return table.Matrix{}, err
		}
		for i, v := range c.Numeric {
			m.Data[i*m.Cols+j] = st.scale(v)
		}
	}
	return m, nil
}

// Apply scales a single raw feature vector given in Columns() order.
func (s *Scaler) Apply(raw []float64) ([]float64, error) {
	if len(raw) != len(s.stats) {
		return nil, fmt.Errorf("scale: vector has %d values, want %d", len(raw), len(s.stats))
	}
	out := make([]float64, len(raw))
	for j, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %q", ErrNonFiniteValue, s.stats[j].Column)
		}
		out[j] = s.stats[j].scale(v)
	}
	return out, nil
}

func (s Stats) scale(v float64) float64 {
	if s.Std == 0 {
		return 0
	}
	return (v - s.Mean) / s.Std
}

func checkFinite(c table.Column) error {
	for i, v := range c.Numeric {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: column %q row %d", ErrNonFiniteValue, c.Name, i)
		}
	}
	return nil
}

// nearZero treats a standard deviation within rounding noise of the mean as
// zero. Constant columns rarely produce an exact 0 after floating-point
// summation.
func nearZero(std, mean float64) bool {
	const eps = 2.220446049250313e-16
	return std <= 10*eps*math.Max(1, math.Abs(mean))
}
