package domain

import "errors"

// Engine error kinds. Every computation validates its own preconditions
// and fails with one of these before doing any work; callers match with
// errors.Is after unwrapping.
var (
	// ErrInvalidInput marks non-finite values, malformed timestamps or
	// out-of-range parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a series below the minimum sample size
	// for the requested statistic.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrBenchmarkRequired marks a Treynor computation requested without
	// a benchmark series.
	ErrBenchmarkRequired = errors.New("benchmark series required")

	// ErrInconsistentAllocation marks portfolio weights that do not sum
	// to 1 within tolerance.
	ErrInconsistentAllocation = errors.New("inconsistent allocation")

	// ErrDimensionMismatch marks a correlation matrix whose dimensions
	// disagree with the asset set.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
