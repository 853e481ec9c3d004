package query

import (
	"cmp"
	"slices"

	"github.com/hupe1980/dinecluster/table"
)

// DefaultTopN is the number of rows TopNByCity returns by default.
const DefaultTopN = 5

// TopResult is the answer to a top-N query.
type TopResult struct {
	Rows    table.JoinedTable `json:"rows"`
	Cuisine Breakdown         `json:"cuisine"`
	Cluster Breakdown         `json:"cluster"`
}

// Empty reports whether the result has no rows.
func (r TopResult) Empty() bool { return len(r.Rows) == 0 }

// TopNByCity returns the n highest-rated rows in city, ordered by rating and
// then rating count, both descending. Exact ties keep table order.
// n <= 0 and unknown cities yield an empty result.
func (e *Engine) TopNByCity(city string, n int) TopResult {
	b, ok := e.byCity[city]
	if !ok || n <= 0 {
		return emptyTop()
	}

	rows := e.collect(b, nil)
	slices.SortStableFunc(rows, compareRank)
	if len(rows) > n {
		rows = slices.Clip(rows[:n])
	}

	return TopResult{
		Rows:    rows,
		Cuisine: CuisineBreakdown(rows),
		Cluster: ClusterBreakdown(rows),
	}
}

func emptyTop() TopResult {
	return TopResult{Rows: table.JoinedTable{}, Cuisine: Breakdown{}, Cluster: Breakdown{}}
}

// compareRank orders by rating desc, then rating count desc.
func compareRank(a, b table.JoinedRecord) int {
	if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
		return c
	}
	return cmp.Compare(b.RatingCount, a.RatingCount)
}
