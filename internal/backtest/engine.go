package backtest

import (
	"fmt"
	"time"

	"gapfade/internal/logging"
	"gapfade/internal/strategy"
	"gapfade/internal/types"
)

// Engine drives one session's simulation. It owns the detector, risk
// manager, position manager and trade ledger exclusively; nothing is
// shared, so independent sessions can run in parallel engine instances.
//
// Per bar, strictly in order: indicators and pattern detection, then exit
// checks (stop loss, take profit, session-close cutoff), then the entry
// check, then the observability snapshot. A session-close exit ends the
// run; no later bars are processed.
type Engine struct {
	// Configuration
	config EngineConfig
	logger *logging.Logger

	// Data
	session *types.Session

	// Components
	detector  *strategy.GapFadeDetector
	risk      *strategy.RiskManager
	positions *strategy.PositionManager

	// State
	trades        []types.Trade
	cutoffMinutes int
	sessionActive bool
	barsProcessed int
	hasRun        bool
}

// EngineConfig holds simulation configuration
type EngineConfig struct {
	Strategy    strategy.GapFadeConfig `json:"strategy"`
	Risk        strategy.RiskConfig    `json:"risk"`
	CloseCutoff string                 `json:"close_cutoff"` // "15:00"
}

// NewEngine creates a simulation engine for one session.
func NewEngine(session *types.Session, config EngineConfig, logger *logging.Logger) (*Engine, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: session is required", types.ErrInvalidConfig)
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if config.CloseCutoff == "" {
		config.CloseCutoff = "15:00"
	}
	cutoff, err := types.ParseClock(config.CloseCutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: close cutoff: %v", types.ErrInvalidConfig, err)
	}

	if logger == nil {
		logger = logging.NewComponentLogger("engine")
	}

	detector, err := strategy.NewGapFadeDetector(config.Strategy, session.PreviousClose)
	if err != nil {
		return nil, err
	}

	risk, err := strategy.NewRiskManager(config.Risk, session.Capital)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:        config,
		logger:        logger,
		session:       session,
		detector:      detector,
		risk:          risk,
		positions:     strategy.NewPositionManager(),
		cutoffMinutes: cutoff,
		sessionActive: true,
	}, nil
}

// Run executes the simulation over the session's bar sequence and returns
// the completed results. An engine instance runs exactly once.
func (e *Engine) Run() (*Results, error) {
	if e.hasRun {
		return nil, fmt.Errorf("%w: engine has already run", types.ErrInvalidState)
	}
	e.hasRun = true

	started := time.Now()

	e.logger.WithField("instrument", e.session.Instrument).Infof(
		"Starting session: previous close %.2f, capital %.2f, stop loss %.2f, take profit %.2f",
		e.session.PreviousClose, e.risk.InitialCapital(),
		e.risk.StopLossAmount(), e.risk.TakeProfitAmount())

	for _, bar := range e.session.Bars {
		if !e.sessionActive {
			break
		}
		if err := e.processBar(bar); err != nil {
			return nil, err
		}
		e.barsProcessed++
	}

	// Force close any open position at end of data
	if e.positions.IsOpen() {
		if err := e.closePosition(e.session.LastBar(), types.ExitEndOfData); err != nil {
			return nil, err
		}
	}

	results := e.buildResults(time.Since(started))

	e.logger.Infof("Session complete: %d trades, final capital %.2f (%.2f%%)",
		results.TradesOpened, results.FinalCapital, results.ReturnPercent)

	return results, nil
}

// processBar runs the per-bar protocol for one bar.
func (e *Engine) processBar(bar types.Bar) error {
	// Indicators update and pattern detection run first; any signal is
	// captured but not acted on until exits have been evaluated.
	signal := e.detector.ProcessBar(bar)
	if signal != nil {
		e.logger.LogSignal(string(signal.Side), signal.Price, signal.Timestamp, signal.Reason)
	}

	if e.positions.IsOpen() {
		if err := e.checkExitConditions(bar); err != nil {
			return err
		}
	}

	// Entry only when the exit step left nothing open and the session
	// wasn't ended by the close cutoff on this same bar.
	if signal != nil && e.sessionActive && !e.positions.IsOpen() {
		if err := e.executeEntry(signal, bar); err != nil {
			return err
		}
	}

	e.snapshot(bar)
	return nil
}

// checkExitConditions evaluates stop loss, take profit and the session
// close cutoff, in that priority order. The first match closes the
// position at the bar's close; a cutoff close also ends the session.
func (e *Engine) checkExitConditions(bar types.Bar) error {
	unrealized := e.positions.UnrealizedPnL(bar.Close)

	if e.risk.StopLossHit(unrealized) {
		e.logger.LogRisk("stop_loss", "Stop loss hit", unrealized, -e.risk.StopLossAmount())
		return e.closePosition(bar, types.ExitStopLoss)
	}

	if e.risk.TakeProfitHit(unrealized) {
		return e.closePosition(bar, types.ExitTakeProfit)
	}

	if bar.MinuteOfDay() >= e.cutoffMinutes {
		e.sessionActive = false
		return e.closePosition(bar, types.ExitSessionClose)
	}

	return nil
}

// executeEntry opens a short position off a captured signal, subject to
// the daily trade cap and capital-based sizing. A discarded signal is
// expected behavior, not an error.
func (e *Engine) executeEntry(signal *strategy.Signal, bar types.Bar) error {
	if !e.risk.CanOpen() {
		e.logger.Infof("Signal at %s discarded: daily trade cap reached", bar.Timestamp)
		return nil
	}

	entryPrice := bar.Close
	quantity := e.risk.PositionSize(entryPrice)
	if quantity <= 0 {
		e.logger.Infof("Signal at %s discarded: insufficient capital for entry at %.2f", bar.Timestamp, entryPrice)
		return nil
	}

	if err := e.positions.Open(signal.Side, entryPrice, quantity, bar.Timestamp); err != nil {
		return err
	}
	e.risk.RecordOpen()

	trade := types.NewEntryTrade(bar.Timestamp, signal.Side, entryPrice, quantity)
	e.trades = append(e.trades, trade)

	e.logger.LogTrade(string(trade.Kind), string(trade.Side), trade.Quantity, trade.Price, trade.Timestamp)
	return nil
}

// closePosition closes the open position at the bar's close price and
// records the exit trade with its reason.
func (e *Engine) closePosition(bar types.Bar, reason types.ExitReason) error {
	side := e.positions.Position().Side
	quantity := e.positions.Position().Quantity

	pnl, err := e.positions.Close(bar.Close)
	if err != nil {
		return err
	}
	e.risk.ApplyRealizedPnL(pnl)

	trade := types.NewExitTrade(bar.Timestamp, side, bar.Close, quantity, pnl, reason)
	e.trades = append(e.trades, trade)

	e.logger.LogExit(string(reason), pnl, pnl/e.risk.InitialCapital()*100, bar.Timestamp)
	return nil
}

// snapshot emits the per-bar observability record. This is a side effect
// for operators, not part of the return contract.
func (e *Engine) snapshot(bar types.Bar) {
	if !e.detector.Ready() {
		e.logger.Debugf("[%s] warming up indicators", bar.Timestamp)
		return
	}

	e.logger.LogBar(bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close,
		e.detector.FastEMA(), e.detector.SlowEMA(), e.positions.IsOpen())

	if e.positions.IsOpen() {
		e.logger.Debugf("[%s] position open, unrealized PnL %.2f",
			bar.Timestamp, e.positions.UnrealizedPnL(bar.Close))
	}
}

// Trades returns the ordered trade ledger recorded so far.
func (e *Engine) Trades() []types.Trade {
	return e.trades
}
