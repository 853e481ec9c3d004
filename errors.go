package dinecluster

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dinecluster/internal/join"
	"github.com/hupe1980/dinecluster/internal/kmeans"
	"github.com/hupe1980/dinecluster/internal/scale"
)

var (
	// ErrInvalidClusterCount is returned when k is outside [1, rows].
	ErrInvalidClusterCount = errors.New("invalid cluster count")
	// ErrEmptyInput is returned when clustering or joining receives no rows.
	ErrEmptyInput = errors.New("empty input")
	// ErrDegenerateColumn is returned for zero-variance feature columns when
	// WithFailOnDegenerate is set.
	ErrDegenerateColumn = errors.New("degenerate feature column")
	// ErrJoinKeyAmbiguity is returned by a strict join when a name matches
	// several feature rows.
	ErrJoinKeyAmbiguity = errors.New("ambiguous join key")
	// ErrNoNumericColumns is returned when the feature table has nothing to cluster on.
	ErrNoNumericColumns = errors.New("no numeric feature columns")
	// ErrNonFiniteValue is returned when a feature value is NaN or infinite.
	ErrNonFiniteValue = errors.New("non-finite feature value")
	// ErrUnknownColumn is returned when a named feature column does not exist.
	ErrUnknownColumn = errors.New("unknown feature column")
	// ErrMissingFeature is returned when a named feature vector lacks a model column.
	ErrMissingFeature = errors.New("missing feature")
	// ErrInvalidAssignment is returned by Join when an assignment has mismatched
	// names and labels or a label outside [0, k).
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// InvalidClusterCountError reports a k outside [1, rows].
//
// It matches ErrInvalidClusterCount with errors.Is.
type InvalidClusterCountError struct {
	K     int
	Rows  int
	cause error
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("invalid cluster count: k=%d, rows=%d", e.K, e.Rows)
}

func (e *InvalidClusterCountError) Unwrap() []error {
	return []error{ErrInvalidClusterCount, e.cause}
}

// JoinKeyAmbiguityError lists the names that matched several feature rows.
//
// It matches ErrJoinKeyAmbiguity with errors.Is.
type JoinKeyAmbiguityError struct {
	Names []string
	cause error
}

func (e *JoinKeyAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous join key: %d names match more than one feature row", len(e.Names))
}

func (e *JoinKeyAmbiguityError) Unwrap() []error {
	return []error{ErrJoinKeyAmbiguity, e.cause}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var icc *kmeans.InvalidClusterCountError
	if errors.As(err, &icc) {
		return &InvalidClusterCountError{K: icc.K, Rows: icc.Rows, cause: err}
	}
	var amb *join.JoinKeyAmbiguityError
	if errors.As(err, &amb) {
		return &JoinKeyAmbiguityError{Names: amb.Names, cause: err}
	}

	switch {
	case errors.Is(err, kmeans.ErrEmptyInput),
		errors.Is(err, scale.ErrEmptyInput),
		errors.Is(err, join.ErrEmptyInput):
		return fmt.Errorf("%w: %w", ErrEmptyInput, err)
	case errors.Is(err, scale.ErrDegenerateColumn):
		return fmt.Errorf("%w: %w", ErrDegenerateColumn, err)
	case errors.Is(err, scale.ErrNoNumericColumns):
		return fmt.Errorf("%w: %w", ErrNoNumericColumns, err)
	case errors.Is(err, scale.ErrNonFiniteValue):
		return fmt.Errorf("%w: %w", ErrNonFiniteValue, err)
	case errors.Is(err, scale.ErrUnknownColumn):
		return fmt.Errorf("%w: %w", ErrUnknownColumn, err)
	case errors.Is(err, join.ErrInvalidAssignment):
		return fmt.Errorf("%w: %w", ErrInvalidAssignment, err)
	}

	return err
}
