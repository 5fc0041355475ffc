package strategy

import (
	"fmt"
	"math"

	"gapfade/internal/types"
)

// RiskManager converts available capital into trade sizes and evaluates
// stop-loss / take-profit thresholds against unrealized PnL.
//
// Thresholds are derived once from *starting* capital and fixed for the
// run. Sizing against current capital while stopping against starting
// capital keeps per-trade risk constant as capital moves intra-session.
type RiskManager struct {
	// Configuration
	StopLossFraction   float64 `json:"stop_loss_fraction"`   // fraction of starting capital (0.02 = 2%)
	TakeProfitFraction float64 `json:"take_profit_fraction"` // fraction of starting capital (0.07 = 7%)
	MaxDailyTrades     int     `json:"max_daily_trades"`     // entries allowed per session (2)

	// State
	initialCapital   float64
	currentCapital   float64
	tradesToday      int
	stopLossAmount   float64
	takeProfitAmount float64
}

// RiskConfig holds configuration for risk management
type RiskConfig struct {
	StopLossFraction   float64 `json:"stop_loss_fraction"`   // 2% (0.02)
	TakeProfitFraction float64 `json:"take_profit_fraction"` // 7% (0.07)
	MaxDailyTrades     int     `json:"max_daily_trades"`     // 2
}

// NewRiskManager creates a risk manager for one session's capital.
func NewRiskManager(config RiskConfig, capital float64) (*RiskManager, error) {
	// Set defaults
	if config.StopLossFraction == 0 {
		config.StopLossFraction = 0.02 // 2%
	}
	if config.TakeProfitFraction == 0 {
		config.TakeProfitFraction = 0.07 // 7%
	}
	if config.MaxDailyTrades == 0 {
		config.MaxDailyTrades = 2
	}

	if capital <= 0 {
		return nil, fmt.Errorf("%w: capital must be positive, got %v", types.ErrInvalidConfig, capital)
	}
	if config.StopLossFraction < 0 {
		return nil, fmt.Errorf("%w: stop loss fraction must not be negative, got %v", types.ErrInvalidConfig, config.StopLossFraction)
	}
	if config.TakeProfitFraction < 0 {
		return nil, fmt.Errorf("%w: take profit fraction must not be negative, got %v", types.ErrInvalidConfig, config.TakeProfitFraction)
	}
	if config.MaxDailyTrades < 0 {
		return nil, fmt.Errorf("%w: max daily trades must not be negative, got %d", types.ErrInvalidConfig, config.MaxDailyTrades)
	}

	return &RiskManager{
		StopLossFraction:   config.StopLossFraction,
		TakeProfitFraction: config.TakeProfitFraction,
		MaxDailyTrades:     config.MaxDailyTrades,
		initialCapital:     capital,
		currentCapital:     capital,
		stopLossAmount:     capital * config.StopLossFraction,
		takeProfitAmount:   capital * config.TakeProfitFraction,
	}, nil
}

// PositionSize returns how many units the current capital buys at the
// entry price, floored to a whole quantity. Zero for a non-positive price.
func (rm *RiskManager) PositionSize(entryPrice float64) int {
	if entryPrice <= 0 {
		return 0
	}
	return int(math.Floor(rm.currentCapital / entryPrice))
}

// CanOpen reports whether the daily trade cap still allows an entry.
func (rm *RiskManager) CanOpen() bool {
	return rm.tradesToday < rm.MaxDailyTrades
}

// RecordOpen increments the daily trade counter. Call exactly once per
// executed entry.
func (rm *RiskManager) RecordOpen() {
	rm.tradesToday++
}

// StopLossHit reports whether the unrealized loss has reached the
// stop-loss amount. The threshold itself counts as hit.
func (rm *RiskManager) StopLossHit(unrealizedPnL float64) bool {
	return unrealizedPnL <= -rm.stopLossAmount
}

// TakeProfitHit reports whether the unrealized profit has reached the
// take-profit amount. The threshold itself counts as hit.
func (rm *RiskManager) TakeProfitHit(unrealizedPnL float64) bool {
	return unrealizedPnL >= rm.takeProfitAmount
}

// ApplyRealizedPnL adds realized PnL to current capital. Call exactly
// once per executed exit.
func (rm *RiskManager) ApplyRealizedPnL(pnl float64) {
	rm.currentCapital += pnl
}

// CurrentCapital returns the running capital
func (rm *RiskManager) CurrentCapital() float64 {
	return rm.currentCapital
}

// InitialCapital returns the starting capital
func (rm *RiskManager) InitialCapital() float64 {
	return rm.initialCapital
}

// TotalPnL returns realized PnL accumulated so far
func (rm *RiskManager) TotalPnL() float64 {
	return rm.currentCapital - rm.initialCapital
}

// TotalPnLPercent returns realized PnL as a percentage of starting capital
func (rm *RiskManager) TotalPnLPercent() float64 {
	return rm.TotalPnL() / rm.initialCapital * 100
}

// TradesOpened returns how many entries have been recorded this session
func (rm *RiskManager) TradesOpened() int {
	return rm.tradesToday
}

// StopLossAmount returns the fixed stop-loss amount for the run
func (rm *RiskManager) StopLossAmount() float64 {
	return rm.stopLossAmount
}

// TakeProfitAmount returns the fixed take-profit amount for the run
func (rm *RiskManager) TakeProfitAmount() float64 {
	return rm.takeProfitAmount
}
