package hypothesis

import "errors"

var (
	// ErrInsufficientData is returned when a sample is smaller than a test needs.
	ErrInsufficientData = errors.New("hypothesis: insufficient data")

	// ErrZeroVariance is returned when the statistic's denominator vanishes.
	ErrZeroVariance = errors.New("hypothesis: zero variance")

	// ErrInvalidInput is returned for malformed tables, mismatched lengths or
	// out-of-range confidence levels.
	ErrInvalidInput = errors.New("hypothesis: invalid input")
)
