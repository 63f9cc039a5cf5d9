package sim

import "errors"

// Sentinel errors for the three failure classes a simulation can hit
// before or between steps. Wrapped errors carry the offending parameter;
// match with errors.Is.
var (
	// ErrInvalidConfig covers resolutions, iteration counts, thresholds
	// and reaction coefficients outside their sane ranges.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidTarget covers absent or degenerate targets and missing
	// mesh sinks. Raised before the grid is allocated.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrUnstable flags coefficient sets that fail the explicit-Euler
	// stability screen.
	ErrUnstable = errors.New("numerically unstable parameters")
)
