package join

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/dinecluster/table"
)

var (
	// ErrEmptyInput is returned when the canonical table has no rows.
	ErrEmptyInput = errors.New("join: empty canonical table")
	// ErrJoinKeyAmbiguity is returned under PolicyStrict when a name matches
	// more than one assignment row.
	ErrJoinKeyAmbiguity = errors.New("join: ambiguous join key")
	// ErrInvalidAssignment is returned when names and labels differ in length
	// or a label lies outside [0, K).
	ErrInvalidAssignment = errors.New("join: invalid assignment")
)

// JoinKeyAmbiguityError lists the canonical names that matched more than once.
type JoinKeyAmbiguityError struct {
	Names []string
}

func (e *JoinKeyAmbiguityError) Error() string {
	const maxListed = 5
	names := e.Names
	suffix := ""
	if len(names) > maxListed {
		suffix = fmt.Sprintf(" (+%d more)", len(names)-maxListed)
		names = names[:maxListed]
	}
	return fmt.Sprintf("join: ambiguous join key for %d names: %s%s", len(e.Names), strings.Join(names, ", "), suffix)
}

func (e *JoinKeyAmbiguityError) Unwrap() error { return ErrJoinKeyAmbiguity }

// Policy decides what happens when a name matches several assignment rows.
type Policy uint8

const (
	// PolicyDuplicate emits one output row per match and reports it.
	PolicyDuplicate Policy = iota
	// PolicyStrict rejects ambiguous names.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyDuplicate:
		return "duplicate"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// ParsePolicy maps "duplicate" or "strict" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "duplicate":
		return PolicyDuplicate, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("join: unknown policy %q", s)
	}
}

// Report summarizes a join.
type Report struct {
	// Rows is the number of output rows.
	Rows int `json:"rows"`
	// Ambiguous maps every canonical name with more than one match to its match count.
	Ambiguous map[string]int `json:"ambiguous,omitempty"`
	// Duplicated counts the extra rows emitted for ambiguous names.
	Duplicated int `json:"duplicated"`
	// Unmatched counts canonical rows that received the null label.
	Unmatched int `json:"unmatched"`
}

// AmbiguousNames returns the ambiguous names in sorted order.
func (r Report) AmbiguousNames() []string {
	names := make([]string, 0, len(r.Ambiguous))
	for n := range r.Ambiguous {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// CheckAssignment verifies that a has one label per name and that every
// label lies in [0, K). K <= 0 only bounds labels from below.
func CheckAssignment(a table.Assignment) error {
	if len(a.Names) != len(a.Labels) {
		return fmt.Errorf("%w: %d names and %d labels", ErrInvalidAssignment, len(a.Names), len(a.Labels))
	}
	for i, l := range a.Labels {
		if l < 0 || (a.K > 0 && l >= a.K) {
			return fmt.Errorf("%w: label %d of %q outside [0, %d)", ErrInvalidAssignment, l, a.Names[i], a.K)
		}
	}
	return nil
}

// Left joins the canonical table with the assignment on the name column.
// Output rows keep canonical order; a name with several matches expands to one
// row per match in assignment order.
func Left(r table.CanonicalTable, a table.Assignment, policy Policy) (table.JoinedTable, Report, error) {
	if len(r) == 0 {
		return nil, Report{}, ErrEmptyInput
	}
	if err := CheckAssignment(a); err != nil {
		return nil, Report{}, err
	}

	index := make(map[string][]int, len(a.Names))
	for i, name := range a.Names {
		index[name] = append(index[name], a.Labels[i])
	}

	var report Report
	size := 0
	for _, rec := range r {
		m := len(index[rec.Name])
		if m > 1 {
			if report.Ambiguous == nil {
				report.Ambiguous = make(map[string]int)
			}
			report.Ambiguous[rec.Name] = m
			report.Duplicated += m - 1
		}
		size += max(m, 1)
	}

	if policy == PolicyStrict && len(report.Ambiguous) > 0 {
		return nil, report, &JoinKeyAmbiguityError{Names: report.AmbiguousNames()}
	}

	out := make(table.JoinedTable, 0, size)
	for _, rec := range r {
		labels := index[rec.Name]
		if len(labels) == 0 {
			report.Unmatched++
			out = append(out, table.JoinedRecord{CanonicalRecord: rec, Cluster: table.None()})
			continue
		}
		for _, l := range labels {
			out = append(out, table.JoinedRecord{CanonicalRecord: rec, Cluster: table.Some(l)})
		}
	}
	report.Rows = len(out)

	return out, report, nil
}
