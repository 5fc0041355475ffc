package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Bar represents one fixed-interval OHLC price bar within a session.
// Timestamps are intraday, minute resolution, formatted "HH:MM".
type Bar struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// NewBar creates a new Bar instance
func NewBar(timestamp string, open, high, low, close float64) Bar {
	return Bar{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
	}
}

// ParseClock parses an intraday "HH:MM" timestamp into minutes since midnight.
func ParseClock(ts string) (int, error) {
	parts := strings.SplitN(ts, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q: want HH:MM", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: out of range", ts)
	}

	return hours*60 + minutes, nil
}

// MinuteOfDay returns the bar timestamp as minutes since midnight.
// Returns -1 for an unparseable timestamp; the loader validates timestamps
// before bars reach the engine, so -1 only appears on unvalidated input.
func (b Bar) MinuteOfDay() int {
	m, err := ParseClock(b.Timestamp)
	if err != nil {
		return -1
	}
	return m
}

// GetPrice returns the closing price (commonly used price)
func (b Bar) GetPrice() float64 {
	return b.Close
}

// GetRange returns the price range (high - low)
func (b Bar) GetRange() float64 {
	return b.High - b.Low
}

// GetBody returns the absolute difference between open and close
func (b Bar) GetBody() float64 {
	return abs(b.Close - b.Open)
}

// IsBullish returns true if close > open
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish returns true if close < open
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}

// GapPercent returns the opening gap relative to a reference close,
// e.g. 0.03 for a 3% gap-up over the previous session close.
func (b Bar) GapPercent(referenceClose float64) float64 {
	if referenceClose == 0 {
		return 0
	}
	return (b.Open - referenceClose) / referenceClose
}

// Helper function
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
