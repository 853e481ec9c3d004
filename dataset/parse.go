package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/hupe1980/dinecluster/table"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("dataset: missing column")
	// ErrMalformedValue is returned when a required numeric cell does not parse.
	ErrMalformedValue = errors.New("dataset: malformed value")
	// ErrNonFiniteValue is returned for NaN or infinite numeric cells.
	ErrNonFiniteValue = errors.New("dataset: non-finite value")
	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("dataset: empty file")
)

// CanonicalColumns are the header names a canonical file must contain.
var CanonicalColumns = []string{"name", "city", "cuisine", "rating", "rating_count", "cost"}

// Delimiter returns the field separator for a (decompressed) file name.
func Delimiter(name string) rune {
	if strings.EqualFold(path.Ext(name), ".tsv") {
		return '\t'
	}
	return ','
}

func newReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.ReuseRecord = true
	cr.FieldsPerRecord = 0
	return cr
}

func readHeader(cr *csv.Reader) ([]string, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out, nil
}

// ParseCanonical reads a canonical table from r.
func ParseCanonical(r io.Reader, delim rune) (table.CanonicalTable, error) {
	cr := newReader(r, delim)

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	idx := make(map[string]int, len(CanonicalColumns))
	for _, want := range CanonicalColumns {
		pos := indexOf(header, want)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, want)
		}
		idx[want] = pos
	}

	var out table.CanonicalTable
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rating, err := parseFloat(rec[idx["rating"]], "rating", line)
		if err != nil {
			return nil, err
		}
		cost, err := parseFloat(rec[idx["cost"]], "cost", line)
		if err != nil {
			return nil, err
		}
		count, err := parseCount(rec[idx["rating_count"]], line)
		if err != nil {
			return nil, err
		}

		out = append(out, table.CanonicalRecord{
			Name:        rec[idx["name"]],
			City:        rec[idx["city"]],
			Cuisine:     rec[idx["cuisine"]],
			Rating:      rating,
			RatingCount: count,
			Cost:        cost,
		})
	}

	return out, nil
}

// ParseFeatures reads a feature table from r.
func ParseFeatures(r io.Reader, delim rune) (table.FeatureTable, error) {
	cr := newReader(r, delim)

	header, err := readHeader(cr)
	if err != nil {
		return table.FeatureTable{}, err
	}

	nameIdx := indexOf(header, "name")
	if nameIdx < 0 {
		return table.FeatureTable{}, fmt.Errorf("%w: %q", ErrMissingColumn, "name")
	}

	var names []string
	cells := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.FeatureTable{}, err
		}
		for i, v := range rec {
			if i == nameIdx {
				names = append(names, v)
				continue
			}
			cells[i] = append(cells[i], v)
		}
	}

	ft := table.FeatureTable{Names: names}
	for i, h := range header {
		if i == nameIdx {
			continue
		}
		col, err := inferColumn(h, cells[i])
		if err != nil {
			return table.FeatureTable{}, err
		}
		ft.Columns = append(ft.Columns, col)
	}

	if names == nil {
		ft.Names = []string{}
	}
	return ft, nil
}

// inferColumn returns a numeric column when every non-empty cell parses as a
// float. A numeric column with empty cells is an error.
func inferColumn(name string, cells []string) (table.Column, error) {
	values := make([]float64, len(cells))
	seen := false
	missing := -1

	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			if missing < 0 {
				missing = i
			}
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return table.TextColumn(name, cells...), nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return table.Column{}, fmt.Errorf("%w: column %q line %d", ErrNonFiniteValue, name, i+2)
		}
		values[i] = v
		seen = true
	}

	if !seen {
		return table.TextColumn(name, cells...), nil
	}
	if missing >= 0 {
		return table.Column{}, fmt.Errorf("%w: column %q line %d is empty", ErrMalformedValue, name, missing+2)
	}
	return table.NumericColumn(name, values...), nil
}

func parseFloat(s, column string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %q line %d: %q", ErrMalformedValue, column, line, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: column %q line %d", ErrNonFiniteValue, column, line)
	}
	return v, nil
}

func parseCount(s string, line int) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	// Exports sometimes write counts as "120.0".
	v, err := parseFloat(s, "rating_count", line)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, fmt.Errorf("%w: column %q line %d: %q", ErrMalformedValue, "rating_count", line, s)
	}
	return int64(v), nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
