package query

import (
	"github.com/hupe1980/dinecluster/internal/bitmap"
	"github.com/hupe1980/dinecluster/table"
)

// Default slider bounds of the filter view.
const (
	DefaultRatingMin      = 1.0
	DefaultRatingMax      = 5.0
	DefaultCostMin        = 0
	DefaultCostMax        = 300350
	DefaultRatingCountMin = 0
	DefaultRatingCountMax = 10000
)

// Range is an inclusive float interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r IntRange) Contains(v int64) bool { return v >= r.Min && v <= r.Max }

// Filter selects rows that satisfy all of its predicates.
type Filter struct {
	// City must match exactly.
	City string `json:"city"`
	// Cuisine is a case-insensitive substring; empty matches every row.
	Cuisine     string   `json:"cuisine"`
	Rating      Range    `json:"rating"`
	Cost        Range    `json:"cost"`
	RatingCount IntRange `json:"rating_count"`
}

// DefaultFilter returns a filter for city and cuisine with the default
// rating, cost and rating-count bounds.
func DefaultFilter(city, cuisine string) Filter {
	return Filter{
		City:        city,
		Cuisine:     cuisine,
		Rating:      Range{Min: DefaultRatingMin, Max: DefaultRatingMax},
		Cost:        Range{Min: DefaultCostMin, Max: DefaultCostMax},
		RatingCount: IntRange{Min: DefaultRatingCountMin, Max: DefaultRatingCountMax},
	}
}

// Match reports whether r satisfies every predicate of f.
func (f Filter) Match(r table.JoinedRecord) bool {
	return r.City == f.City &&
		containsFold(r.Cuisine, f.Cuisine) &&
		f.Rating.Contains(r.Rating) &&
		f.Cost.Contains(r.Cost) &&
		f.RatingCount.Contains(r.RatingCount)
}

// FilterRecords returns the rows matching f in table order.
func (e *Engine) FilterRecords(f Filter) table.JoinedTable {
	city, ok := e.byCity[f.City]
	if !ok {
		return table.JoinedTable{}
	}

	candidates := city
	if cuisine := e.cuisineRows(f.Cuisine); cuisine != nil {
		candidates = bitmap.Intersect(city, cuisine)
	}

	return e.collect(candidates, f.Match)
}
