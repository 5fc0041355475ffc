package types

import "errors"

// Error classes surfaced by the simulation core. Callers should match with
// errors.Is; everything else wraps one of these or is an I/O error from the
// loader boundary.
var (
	// ErrInvalidConfig marks caller-input errors detected before any
	// simulation step runs: non-positive capital, empty bar sequence,
	// non-positive indicator period or risk fraction. Never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidState marks a logic defect: opening a position that is
	// already open, or closing one that isn't. Normal engine flow makes
	// this unreachable.
	ErrInvalidState = errors.New("invalid state")
)
