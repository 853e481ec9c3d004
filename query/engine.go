package query

import (
	"strings"

	"github.com/hupe1980/dinecluster/internal/bitmap"
	"github.com/hupe1980/dinecluster/table"
)

// Engine indexes a joined table for queries.
type Engine struct {
	rows table.JoinedTable

	byCity    map[string]*bitmap.Bitmap
	byCuisine map[string]*bitmap.Bitmap

	// first-seen order
	cities   []string
	cuisines []string

	// lowered[i] is strings.ToLower(cuisines[i]).
	lowered []string
}

// New builds an engine over a private copy of t.
func New(t table.JoinedTable) *Engine {
	e := &Engine{
		rows:      append(table.JoinedTable(nil), t...),
		byCity:    make(map[string]*bitmap.Bitmap),
		byCuisine: make(map[string]*bitmap.Bitmap),
	}

	for i, r := range e.rows {
		pos := uint32(i)

		b, ok := e.byCity[r.City]
		if !ok {
			b = bitmap.New()
			e.byCity[r.City] = b
			e.cities = append(e.cities, r.City)
		}
		b.Add(pos)

		b, ok = e.byCuisine[r.Cuisine]
		if !ok {
			b = bitmap.New()
			e.byCuisine[r.Cuisine] = b
			e.cuisines = append(e.cuisines, r.Cuisine)
			e.lowered = append(e.lowered, strings.ToLower(r.Cuisine))
		}
		b.Add(pos)
	}

	for _, b := range e.byCity {
		b.Optimize()
	}
	for _, b := range e.byCuisine {
		b.Optimize()
	}

	return e
}

// Len returns the number of indexed rows.
func (e *Engine) Len() int { return len(e.rows) }

// Records returns a copy of the full table.
func (e *Engine) Records() table.JoinedTable {
	return append(table.JoinedTable(nil), e.rows...)
}

// Cities returns the distinct cities in first-seen order.
func (e *Engine) Cities() []string {
	return append([]string(nil), e.cities...)
}

// Cuisines returns the distinct cuisine values in first-seen order.
func (e *Engine) Cuisines() []string {
	return append([]string(nil), e.cuisines...)
}

// CityCount returns the number of rows in city.
func (e *Engine) CityCount(city string) int {
	b, ok := e.byCity[city]
	if !ok {
		return 0
	}
	return b.Cardinality()
}

// cuisineRows returns the rows whose cuisine contains sub, ignoring case.
// The empty substring matches every row and yields nil.
func (e *Engine) cuisineRows(sub string) *bitmap.Bitmap {
	if sub == "" {
		return nil
	}
	needle := strings.ToLower(sub)

	var matched []*bitmap.Bitmap
	for i, c := range e.cuisines {
		if strings.Contains(e.lowered[i], needle) {
			matched = append(matched, e.byCuisine[c])
		}
	}
	return bitmap.Union(matched...)
}

func (e *Engine) collect(b *bitmap.Bitmap, keep func(table.JoinedRecord) bool) table.JoinedTable {
	out := make(table.JoinedTable, 0, b.Cardinality())
	for pos := range b.Rows() {
		r := e.rows[pos]
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	return out
}
