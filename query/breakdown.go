package query

import (
	"slices"

	"github.com/hupe1980/dinecluster/table"
)

// Share is one group of a breakdown.
type Share struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// Breakdown groups rows by a key. Shares are ordered by count descending,
// then by first appearance.
type Breakdown []Share

// Total returns the number of rows counted.
func (b Breakdown) Total() int {
	n := 0
	for _, s := range b {
		n += s.Count
	}
	return n
}

// Get returns the share for key.
func (b Breakdown) Get(key string) (Share, bool) {
	for _, s := range b {
		if s.Key == key {
			return s, true
		}
	}
	return Share{}, false
}

// CuisineBreakdown groups rows by cuisine.
func CuisineBreakdown(rows table.JoinedTable) Breakdown {
	return breakdown(rows, func(r table.JoinedRecord) string { return r.Cuisine })
}

// ClusterBreakdown groups rows by cluster label. Null labels form the
// group "none".
func ClusterBreakdown(rows table.JoinedTable) Breakdown {
	return breakdown(rows, func(r table.JoinedRecord) string { return r.Cluster.String() })
}

func breakdown(rows table.JoinedTable, key func(table.JoinedRecord) string) Breakdown {
	out := Breakdown{}
	if len(rows) == 0 {
		return out
	}

	index := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Share{Key: k})
		}
		out[i].Count++
	}

	total := float64(len(rows))
	for i := range out {
		out[i].Proportion = float64(out[i].Count) / total
	}

	slices.SortStableFunc(out, func(a, b Share) int { return b.Count - a.Count })
	return out
}
