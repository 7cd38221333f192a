package stats

import "errors"

var (
	// ErrEmpty is returned when an operation needs at least one finite value.
	ErrEmpty = errors.New("stats: empty input")

	// ErrLengthMismatch is returned when paired sequences differ in length.
	ErrLengthMismatch = errors.New("stats: length mismatch")

	// ErrQuantileRange is returned for a quantile outside [0, 1].
	ErrQuantileRange = errors.New("stats: quantile must be in [0, 1]")

	// ErrUnknownStatistic is returned by Compute and Correlate for an unknown name.
	ErrUnknownStatistic = errors.New("stats: unknown statistic")

	// ErrInvalidParameter is returned for a window, lag or smoothing factor out of range.
	ErrInvalidParameter = errors.New("stats: invalid parameter")
)
