package strategy

import (
	"fmt"

	"gapfade/internal/indicators"
	"gapfade/internal/types"
)

// GapFadeDetector implements the two-candle gap-fade pattern as a small
// state machine.
//
// Thesis: a session that opens materially above the previous close but
// cannot hold its opening bar's low is an exhausted gap-up. The detector
// waits for a qualifying opening bar (gap-up with its low clear of the
// slow EMA), retains it as the reference bar, and emits a short signal on
// the first later bar that trades below the reference low.
type GapFadeDetector struct {
	// Configuration
	GapThreshold     float64 `json:"gap_threshold"`      // minimum opening gap (0.03 = 3%)
	FastPeriod       int     `json:"fast_period"`        // fast EMA period (3)
	SlowPeriod       int     `json:"slow_period"`        // slow EMA period (5)
	RequireFastReady bool    `json:"require_fast_ready"` // also gate arming on the fast EMA

	// State
	state         DetectorState
	referenceBar  types.Bar
	previousClose float64

	fastEMA *indicators.EMA
	slowEMA *indicators.EMA
}

// DetectorState represents the detector's state machine position
type DetectorState string

const (
	// StateIdle means no qualifying opening bar is held.
	StateIdle DetectorState = "idle"
	// StateArmed means a reference bar is held and the detector is
	// waiting for a breakdown below its low.
	StateArmed DetectorState = "armed"
)

// Signal represents an emitted directional signal
type Signal struct {
	Side         types.Side `json:"side"`
	Timestamp    string     `json:"timestamp"`
	Price        float64    `json:"price"`
	ReferenceBar types.Bar  `json:"reference_bar"`
	Reason       string     `json:"reason"`
}

// GapFadeConfig holds configuration for the gap-fade detector
type GapFadeConfig struct {
	GapThreshold     float64 `json:"gap_threshold"`      // 3% (0.03)
	FastPeriod       int     `json:"fast_period"`        // 3
	SlowPeriod       int     `json:"slow_period"`        // 5
	RequireFastReady bool    `json:"require_fast_ready"` // false
}

// NewGapFadeDetector creates a new gap-fade detector for one session.
func NewGapFadeDetector(config GapFadeConfig, previousClose float64) (*GapFadeDetector, error) {
	// Set defaults
	if config.GapThreshold == 0 {
		config.GapThreshold = 0.03 // 3%
	}
	if config.FastPeriod == 0 {
		config.FastPeriod = 3
	}
	if config.SlowPeriod == 0 {
		config.SlowPeriod = 5
	}

	if config.GapThreshold < 0 {
		return nil, fmt.Errorf("%w: gap threshold must not be negative, got %v", types.ErrInvalidConfig, config.GapThreshold)
	}
	if previousClose <= 0 {
		return nil, fmt.Errorf("%w: previous close must be positive, got %v", types.ErrInvalidConfig, previousClose)
	}

	fast, err := indicators.NewEMA(config.FastPeriod)
	if err != nil {
		return nil, err
	}
	slow, err := indicators.NewEMA(config.SlowPeriod)
	if err != nil {
		return nil, err
	}

	return &GapFadeDetector{
		GapThreshold:     config.GapThreshold,
		FastPeriod:       config.FastPeriod,
		SlowPeriod:       config.SlowPeriod,
		RequireFastReady: config.RequireFastReady,
		state:            StateIdle,
		previousClose:    previousClose,
		fastEMA:          fast,
		slowEMA:          slow,
	}, nil
}

// ProcessBar feeds one bar through the detector. Indicators update on
// every bar regardless of state. Returns a short signal when the armed
// reference bar's low is broken, nil otherwise.
func (d *GapFadeDetector) ProcessBar(bar types.Bar) *Signal {
	d.fastEMA.Update(bar.Close)
	d.slowEMA.Update(bar.Close)

	if !d.slowEMA.Ready() {
		return nil
	}
	if d.RequireFastReady && !d.fastEMA.Ready() {
		return nil
	}

	switch d.state {
	case StateIdle:
		if d.qualifiesAsReference(bar) {
			d.referenceBar = bar
			d.state = StateArmed
		}
		// The arming bar itself is never checked for breakdown.
		return nil

	case StateArmed:
		// A bar that would re-qualify does not overwrite the held
		// reference; only the breakdown check runs while armed.
		if bar.Low < d.referenceBar.Low {
			signal := &Signal{
				Side:         types.SideSell,
				Timestamp:    bar.Timestamp,
				Price:        bar.Close,
				ReferenceBar: d.referenceBar,
				Reason:       fmt.Sprintf("low %.2f broke reference low %.2f", bar.Low, d.referenceBar.Low),
			}
			d.referenceBar = types.Bar{}
			d.state = StateIdle
			return signal
		}
		return nil
	}

	return nil
}

// qualifiesAsReference checks the arming conditions: a gap-up open over
// the previous close and a low holding strictly above the slow EMA.
func (d *GapFadeDetector) qualifiesAsReference(bar types.Bar) bool {
	gapUp := bar.Open >= d.previousClose*(1+d.GapThreshold)
	aboveSlowEMA := bar.Low > d.slowEMA.Value()
	return gapUp && aboveSlowEMA
}

// State returns the current state machine position
func (d *GapFadeDetector) State() DetectorState {
	return d.state
}

// ReferenceBar returns the held reference bar and whether one is held
func (d *GapFadeDetector) ReferenceBar() (types.Bar, bool) {
	return d.referenceBar, d.state == StateArmed
}

// FastEMA returns the current fast EMA value
func (d *GapFadeDetector) FastEMA() float64 {
	return d.fastEMA.Value()
}

// SlowEMA returns the current slow EMA value
func (d *GapFadeDetector) SlowEMA() float64 {
	return d.slowEMA.Value()
}

// Ready reports whether the detector's readiness gate has been met.
func (d *GapFadeDetector) Ready() bool {
	if d.RequireFastReady && !d.fastEMA.Ready() {
		return false
	}
	return d.slowEMA.Ready()
}

// Reset returns the detector to its session-start state.
func (d *GapFadeDetector) Reset(previousClose float64) {
	d.state = StateIdle
	d.referenceBar = types.Bar{}
	d.previousClose = previousClose
	d.fastEMA.Reset()
	d.slowEMA.Reset()
}
