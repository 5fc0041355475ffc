package indicators

import (
	"gapfade/internal/types"

	"github.com/cinar/indicator"
)

// Analyzer wraps the Indicator Go library to compute batch series over a
// completed session's bars. The engine tracks its EMAs incrementally while
// running; the analyzer re-derives full series afterwards for the report.
type Analyzer struct {
	config AnalyzerConfig
}

// AnalyzerConfig holds configuration for post-run analysis
type AnalyzerConfig struct {
	FastPeriod int `json:"fast_period"` // fast EMA period (3)
	SlowPeriod int `json:"slow_period"` // slow EMA period (5)
	SMAPeriod  int `json:"sma_period"`  // closing-price SMA period (5)
}

// SessionSeries holds the derived indicator series for one session
type SessionSeries struct {
	Closes  []float64 `json:"closes"`
	FastEMA []float64 `json:"fast_ema"`
	SlowEMA []float64 `json:"slow_ema"`
	SMA     []float64 `json:"sma"`
	RSI     []float64 `json:"rsi"`
}

// NewAnalyzer creates a new session analyzer
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	// Set defaults
	if config.FastPeriod == 0 {
		config.FastPeriod = 3
	}
	if config.SlowPeriod == 0 {
		config.SlowPeriod = 5
	}
	if config.SMAPeriod == 0 {
		config.SMAPeriod = 5
	}

	return &Analyzer{config: config}
}

// Analyze computes indicator series over the session's bars.
func (a *Analyzer) Analyze(bars []types.Bar) *SessionSeries {
	if len(bars) == 0 {
		return &SessionSeries{}
	}

	closes := extractCloses(bars)

	series := &SessionSeries{
		Closes:  closes,
		FastEMA: indicator.Ema(a.config.FastPeriod, closes),
		SlowEMA: indicator.Ema(a.config.SlowPeriod, closes),
		SMA:     indicator.Sma(a.config.SMAPeriod, closes),
	}

	rsi, _ := indicator.Rsi(closes)
	series.RSI = rsi

	return series
}

// extractCloses pulls the close prices out of a bar slice
func extractCloses(bars []types.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
