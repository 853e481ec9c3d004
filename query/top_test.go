package query

import (
	"testing"

	"github.com/hupe1980/dinecluster/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopNByCity(t *testing.T) {
	e := New(cityX())

	res := e.TopNByCity("CityX", 5)
	require.Len(t, res.Rows, 5)

	// 4.8 (r2) precedes 4.8 (r5) by table order; 3.9 is cut.
	assert.Equal(t, []string{"r2", "r5", "r4", "r6", "r0"}, names(res.Rows))
	ratings := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		ratings[i] = r.Rating
	}
	assert.Equal(t, []float64{4.8, 4.8, 4.5, 4.2, 4.0}, ratings)
}

func TestTopNByCity_Prefix(t *testing.T) {
	e := New(cityX())

	five := e.TopNByCity("CityX", 5).Rows
	three := e.TopNByCity("CityX", 3).Rows
	assert.Equal(t, five[:3], three)

	all := e.TopNByCity("CityX", 100).Rows
	assert.Len(t, all, 6)
	assert.Equal(t, five, all[:5])
}

func TestTopNByCity_RatingCountTieBreak(t *testing.T) {
	e := New(table.JoinedTable{
		rec("a", "C", "X", 4.5, 10, 0, table.None()),
		rec("b", "C", "X", 4.5, 30, 0, table.None()),
		rec("c", "C", "X", 4.5, 20, 0, table.None()),
		rec("d", "C", "X", 4.5, 30, 0, table.None()),
	})

	assert.Equal(t, []string{"b", "d", "c", "a"}, names(e.TopNByCity("C", 4).Rows))
}

func TestTopNByCity_Breakdowns(t *testing.T) {
	e := New(cityX())
	res := e.TopNByCity("CityX", 6)

	assert.Equal(t, Breakdown{
		{Key: "Indian", Count: 3, Proportion: 0.5},
		{Key: "Thai", Count: 2, Proportion: 2.0 / 6},
		{Key: "Chinese", Count: 1, Proportion: 1.0 / 6},
	}, res.Cuisine)

	assert.Equal(t, Breakdown{
		{Key: "1", Count: 3, Proportion: 0.5},
		{Key: "2", Count: 1, Proportion: 1.0 / 6},
		{Key: "0", Count: 1, Proportion: 1.0 / 6},
		{Key: "none", Count: 1, Proportion: 1.0 / 6},
	}, res.Cluster)

	for _, b := range []Breakdown{res.Cuisine, res.Cluster} {
		var sum float64
		for _, s := range b {
			sum += s.Proportion
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Equal(t, len(res.Rows), b.Total())
	}

	s, ok := res.Cluster.Get("none")
	require.True(t, ok)
	assert.Equal(t, 1, s.Count)
	_, ok = res.Cluster.Get("7")
	assert.False(t, ok)
}

func TestTopNByCity_Empty(t *testing.T) {
	e := New(cityX())

	for _, tt := range []struct {
		city string
		n    int
	}{
		{"Nonexistent", 5},
		{"CityX", 0},
		{"CityX", -3},
		{"cityx", 5},
	} {
		res := e.TopNByCity(tt.city, tt.n)
		assert.True(t, res.Empty(), "%s/%d", tt.city, tt.n)
		assert.NotNil(t, res.Rows)
		assert.Empty(t, res.Cuisine)
		assert.Empty(t, res.Cluster)
	}
}

func TestTopNByCity_DoesNotMutate(t *testing.T) {
	e := New(cityX())
	res := e.TopNByCity("CityX", 2)
	res.Rows[0].Rating = 0

	assert.Equal(t, cityX(), e.Records())
	assert.Equal(t, 4.8, e.TopNByCity("CityX", 2).Rows[0].Rating)
}
