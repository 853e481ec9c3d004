package table

import (
	"fmt"
	"slices"
)

// ColumnKind classifies a feature column.
type ColumnKind uint8

const (
	// KindNumeric columns hold float64 values and take part in clustering.
	KindNumeric ColumnKind = iota
	// KindText columns are carried along but never scaled.
	KindText
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Column is a single named feature column.
// Exactly one of Numeric or Text is populated, depending on Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Numeric []float64
	Text    []string
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numeric)
	}
	return len(c.Text)
}

// NumericColumn builds a numeric column.
func NumericColumn(name string, values ...float64) Column {
	return Column{Name: name, Kind: KindNumeric, Numeric: values}
}

// TextColumn builds a text column.
func TextColumn(name string, values ...string) Column {
	return Column{Name: name, Kind: KindText, Text: values}
}

// FeatureTable holds the per-restaurant clustering features.
// Names is the join key column; Columns are the remaining columns.
type FeatureTable struct {
	Names   []string
	Columns []Column
}

// LabelColumns lists column names that carry previous cluster output and are
// never treated as features.
var LabelColumns = []string{"Cluster", "cluster"}

// Len returns the number of rows.
func (t FeatureTable) Len() int { return len(t.Names) }

// Column returns the column with the given name.
func (t FeatureTable) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Validate checks that every column has exactly one value per row.
func (t FeatureTable) Validate() error {
	n := len(t.Names)
	for _, c := range t.Columns {
		if c.Len() != n {
			return fmt.Errorf("column %q has %d values, want %d", c.Name, c.Len(), n)
		}
	}
	return nil
}

// NumericColumns returns the numeric columns in table order, skipping label
// columns, the "name" key and any explicitly excluded names.
func (t FeatureTable) NumericColumns(exclude ...string) []Column {
	var out []Column
	for _, c := range t.Columns {
		if c.Kind != KindNumeric {
			continue
		}
		if c.Name == "name" || slices.Contains(LabelColumns, c.Name) || slices.Contains(exclude, c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}
