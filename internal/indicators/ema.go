package indicators

import (
	"fmt"

	"gapfade/internal/types"
)

// EMA calculates an exponential moving average incrementally.
// O(1) per update, no history buffer. The first update seeds the value
// with the price itself; every later update applies
// value = price*w + value*(1-w) with w = 2/(period+1).
type EMA struct {
	period      int
	weight      float64
	value       float64
	initialized bool
}

// NewEMA creates an EMA calculator for the given period.
// A period of zero or less is rejected as a configuration error.
func NewEMA(period int) (*EMA, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: EMA period must be positive, got %d", types.ErrInvalidConfig, period)
	}
	return &EMA{
		period: period,
		weight: 2.0 / float64(period+1),
	}, nil
}

// Update feeds one close price into the average.
func (e *EMA) Update(price float64) {
	if !e.initialized {
		e.value = price
		e.initialized = true
		return
	}
	e.value = price*e.weight + e.value*(1-e.weight)
}

// Value returns the current estimate. Zero before the first update.
func (e *EMA) Value() float64 {
	return e.value
}

// Ready reports whether at least one update has occurred.
func (e *EMA) Ready() bool {
	return e.initialized
}

// Period returns the configured period.
func (e *EMA) Period() int {
	return e.period
}

// Reset clears the state for reuse across sessions.
func (e *EMA) Reset() {
	e.value = 0
	e.initialized = false
}
