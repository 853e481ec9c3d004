package scale

import (
	"math"
	"testing"

	"github.com/hupe1980/dinecluster/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() table.FeatureTable {
	return table.FeatureTable{
		Names: []string{"a", "b", "c", "d"},
		Columns: []table.Column{
			table.NumericColumn("feature1", 1, 2, 3, 4),
			table.TextColumn("city", "x", "y", "x", "y"),
			table.NumericColumn("feature2", 10, 10, 30, 30),
			table.NumericColumn("Cluster", 0, 1, 0, 1),
		},
	}
}

func TestFitTransform(t *testing.T) {
	s, m, err := FitTransform(sampleTable())
	require.NoError(t, err)

	assert.Equal(t, []string{"feature1", "feature2"}, s.Columns())
	assert.Equal(t, 4, m.Rows)
	assert.Equal(t, 2, m.Cols)

	for j := 0; j < m.Cols; j++ {
		var sum, sq float64
		for i := 0; i < m.Rows; i++ {
			sum += m.At(i, j)
		}
		mean := sum / float64(m.Rows)
		for i := 0; i < m.Rows; i++ {
			d := m.At(i, j) - mean
			sq += d * d
		}
		assert.InDelta(t, 0, mean, 1e-12, "column %d mean", j)
		assert.InDelta(t, 1, sq/float64(m.Rows), 1e-12, "column %d population variance", j)
	}

	// feature2: mean 20, population std 10
	assert.InDelta(t, -1, m.At(0, 1), 1e-12)
	assert.InDelta(t, 1, m.At(3, 1), 1e-12)
}

func TestFit_Exclude(t *testing.T) {
	s, err := Fit(sampleTable(), WithExclude("feature2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"feature1"}, s.Columns())
}

func TestFit_DegenerateColumn(t *testing.T) {
	ft := table.FeatureTable{
		Names: []string{"a", "b", "c"},
		Columns: []table.Column{
			table.NumericColumn("f", 1, 2, 3),
			table.NumericColumn("const", 0.1, 0.1, 0.1),
		},
	}

	t.Run("ZeroFill", func(t *testing.T) {
		s, m, err := FitTransform(ft)
		require.NoError(t, err)
		assert.Equal(t, []string{"const"}, s.Degenerate())
		for i := 0; i < m.Rows; i++ {
			v := m.At(i, 1)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.Equal(t, 0.0, v)
		}
	})

	t.Run("Fail", func(t *testing.T) {
		_, err := Fit(ft, WithPolicy(PolicyFail))
		assert.ErrorIs(t, err, ErrDegenerateColumn)
		assert.Contains(t, err.Error(), "const")
	})
}

func TestFit_Errors(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := Fit(table.FeatureTable{})
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("NoNumericColumns", func(t *testing.T) {
		_, err := Fit(table.FeatureTable{
			Names:   []string{"a"},
			Columns: []table.Column{table.TextColumn("city", "x")},
		})
		assert.ErrorIs(t, err, ErrNoNumericColumns)
	})

	t.Run("NonFinite", func(t *testing.T) {
		_, err := Fit(table.FeatureTable{
			Names:   []string{"a", "b"},
			Columns: []table.Column{table.NumericColumn("f", 1, math.NaN())},
		})
		assert.ErrorIs(t, err, ErrNonFiniteValue)
	})

	t.Run("RaggedColumn", func(t *testing.T) {
		_, err := Fit(table.FeatureTable{
			Names:   []string{"a", "b"},
			Columns: []table.Column{table.NumericColumn("f", 1)},
		})
		assert.Error(t, err)
	})
}

func TestTransform_UnknownColumn(t *testing.T) {
	s, err := Fit(sampleTable())
	require.NoError(t, err)

	_, err = s.Transform(table.FeatureTable{
		Names:   []string{"a"},
		Columns: []table.Column{table.NumericColumn("feature1", 1)},
	})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestApply(t *testing.T) {
	s, err := Fit(sampleTable())
	require.NoError(t, err)

	v, err := s.Apply([]float64{2.5, 20})
	require.NoError(t, err)
	assert.InDelta(t, 0, v[0], 1e-12)
	assert.InDelta(t, 0, v[1], 1e-12)

	_, err = s.Apply([]float64{1})
	assert.Error(t, err)

	_, err = s.Apply([]float64{math.Inf(1), 0})
	assert.ErrorIs(t, err, ErrNonFiniteValue)
}

func TestStats_IsCopy(t *testing.T) {
	s, err := Fit(sampleTable())
	require.NoError(t, err)

	st := s.Stats()
	st[0].Mean = 999
	assert.NotEqual(t, 999.0, s.Stats()[0].Mean)
}
