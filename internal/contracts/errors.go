package contracts

import "errors"

var (
	// ErrMetricUnavailable is returned by repositories when a requested
	// metric has no observation as of the given date.
	ErrMetricUnavailable = errors.New("metric unavailable")

	// ErrInsufficientData is returned when a computation had too few
	// observations to produce any output at all.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrLookAhead is returned when a point-in-time query would have to
	// touch data newer than the requested as-of date. Backtests fail loud
	// on it rather than silently leaking future information.
	ErrLookAhead = errors.New("look-ahead: data newer than as-of date")

	// ErrNotFound is returned when a ticker, score or sector does not exist.
	ErrNotFound = errors.New("not found")
)
