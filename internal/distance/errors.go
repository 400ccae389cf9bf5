package distance

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetric is returned when a metric name is not in the registry.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrDimensionMismatch is the sentinel behind DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidMetric is returned when scoring with a zero Metric.
	ErrInvalidMetric = errors.New("metric has no scoring function")
)

// DimensionMismatchError reports a query whose length differs from a stored
// vector. Expected is the stored length, Actual the query length.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }
