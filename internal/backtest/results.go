package backtest

import (
	"time"

	"gapfade/internal/types"

	"github.com/google/uuid"
)

// Results contains the completed run's outputs: the trade ledger, capital
// accounting, and summary statistics. The ledger and capital curve are
// deterministic for a given session and configuration; RunID and Duration
// are run metadata only.
type Results struct {
	// Metadata
	RunID      string        `json:"run_id"`
	Instrument string        `json:"instrument"`
	Duration   time.Duration `json:"duration"`

	// Capital accounting
	InitialCapital   float64 `json:"initial_capital"`
	FinalCapital     float64 `json:"final_capital"`
	TotalPnL         float64 `json:"total_pnl"`
	ReturnPercent    float64 `json:"return_percent"`
	StopLossAmount   float64 `json:"stop_loss_amount"`
	TakeProfitAmount float64 `json:"take_profit_amount"`

	// Trading statistics
	TradesOpened  int     `json:"trades_opened"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
	BarsProcessed int     `json:"bars_processed"`

	// Trade history
	Trades       []types.Trade  `json:"trades"`
	CapitalCurve []CapitalPoint `json:"capital_curve"`
}

// CapitalPoint is one point of the session's capital trajectory
type CapitalPoint struct {
	Timestamp string  `json:"timestamp"`
	Capital   float64 `json:"capital"`
	PnL       float64 `json:"pnl"`
}

// buildResults assembles the results from the completed engine state.
func (e *Engine) buildResults(duration time.Duration) *Results {
	results := &Results{
		RunID:            uuid.NewString(),
		Instrument:       e.session.Instrument,
		Duration:         duration,
		InitialCapital:   e.risk.InitialCapital(),
		FinalCapital:     e.risk.CurrentCapital(),
		TotalPnL:         e.risk.TotalPnL(),
		ReturnPercent:    e.risk.TotalPnLPercent(),
		StopLossAmount:   e.risk.StopLossAmount(),
		TakeProfitAmount: e.risk.TakeProfitAmount(),
		TradesOpened:     e.risk.TradesOpened(),
		BarsProcessed:    e.barsProcessed,
		Trades:           e.trades,
	}

	results.calculateTradeStats()
	results.generateCapitalCurve()

	return results
}

// calculateTradeStats fills the win/loss statistics from exit trades.
func (r *Results) calculateTradeStats() {
	for _, trade := range r.Trades {
		if !trade.IsExit() {
			continue
		}

		if trade.PnL > 0 {
			r.WinningTrades++
			if trade.PnL > r.LargestWin {
				r.LargestWin = trade.PnL
			}
		} else {
			r.LosingTrades++
			if trade.PnL < r.LargestLoss {
				r.LargestLoss = trade.PnL
			}
		}
	}
}

// generateCapitalCurve replays exit trades over the starting capital to
// produce the capital trajectory, one point per realized exit.
func (r *Results) generateCapitalCurve() {
	capital := r.InitialCapital

	r.CapitalCurve = append(r.CapitalCurve, CapitalPoint{
		Timestamp: "open",
		Capital:   capital,
	})

	for _, trade := range r.Trades {
		if !trade.IsExit() {
			continue
		}
		capital += trade.PnL
		r.CapitalCurve = append(r.CapitalCurve, CapitalPoint{
			Timestamp: trade.Timestamp,
			Capital:   capital,
			PnL:       trade.PnL,
		})
	}
}

// WinRate returns the fraction of exits that were profitable, in percent.
func (r *Results) WinRate() float64 {
	closed := r.WinningTrades + r.LosingTrades
	if closed == 0 {
		return 0
	}
	return float64(r.WinningTrades) / float64(closed) * 100
}
