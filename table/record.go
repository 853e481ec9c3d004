package table

import (
	"strconv"
)

// CanonicalRecord is one restaurant row of the canonical dataset.
type CanonicalRecord struct {
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Cuisine     string  `json:"cuisine"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
	Cost        float64 `json:"cost"`
}

// CanonicalTable is the ordered canonical dataset.
// Row order is significant: it is the tie-break order for every query.
type CanonicalTable []CanonicalRecord

// Len returns the number of rows.
func (t CanonicalTable) Len() int { return len(t) }

// Label is a nullable cluster label.
type Label struct {
	ID    int
	Valid bool
}

// Some returns a valid label.
func Some(id int) Label { return Label{ID: id, Valid: true} }

// None returns the null label.
func None() Label { return Label{} }

// String returns the label id, or "none" for the null label.
func (l Label) String() string {
	if !l.Valid {
		return "none"
	}
	return strconv.Itoa(l.ID)
}

// MarshalJSON encodes the label as a number or null.
func (l Label) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(l.ID), 10), nil
}

// UnmarshalJSON decodes a number or null.
func (l *Label) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*l = None()
		return nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*l = Some(id)
	return nil
}

// JoinedRecord is a canonical row extended with its cluster label.
type JoinedRecord struct {
	CanonicalRecord
	Cluster Label `json:"cluster"`
}

// JoinedTable is the table every query runs against.
type JoinedTable []JoinedRecord

// Len returns the number of rows.
func (t JoinedTable) Len() int { return len(t) }

// Assignment holds one cluster label per feature row, in feature-table order.
type Assignment struct {
	Names  []string `json:"names"`
	Labels []int    `json:"labels"`
	K      int      `json:"k"`
}

// Len returns the number of labeled rows.
func (a Assignment) Len() int { return len(a.Labels) }
