package backtest

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"gapfade/internal/config"
	"gapfade/internal/logging"
	"gapfade/internal/strategy"
	"gapfade/internal/types"
)

func quietLogger() *logging.Logger {
	logger := logging.NewLogger(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stdout",
	})
	logger.SetOutput(io.Discard)
	return logger
}

func newSession(t *testing.T, previousClose float64, bars []types.Bar) *types.Session {
	t.Helper()
	session, err := types.NewSession("TEST", previousClose, 100000, bars)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session
}

func runEngine(t *testing.T, session *types.Session, cfg EngineConfig) *Results {
	t.Helper()
	engine, err := NewEngine(session, cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	results, err := engine.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return results
}

// Session opening near the previous close: the gap condition never fires
// and the run finishes with an empty ledger and untouched capital.
func TestRunFlatSession(t *testing.T) {
	bars := []types.Bar{
		types.NewBar("09:15", 800, 806, 798, 804),
		types.NewBar("09:20", 804, 810, 802, 808),
		types.NewBar("09:25", 808, 812, 806, 810),
		types.NewBar("09:30", 810, 814, 808, 812),
	}
	session := newSession(t, 800, bars)

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades) != 0 {
		t.Fatalf("expected empty ledger, got %d trades", len(results.Trades))
	}
	if results.TradesOpened != 0 {
		t.Errorf("TradesOpened = %d, want 0", results.TradesOpened)
	}
	if results.FinalCapital != 100000 {
		t.Errorf("FinalCapital = %v, want untouched 100000", results.FinalCapital)
	}
	if results.BarsProcessed != len(bars) {
		t.Errorf("BarsProcessed = %d, want %d", results.BarsProcessed, len(bars))
	}
	if len(results.CapitalCurve) != 1 || results.CapitalCurve[0].Capital != 100000 {
		t.Errorf("capital curve = %+v, want the single opening point", results.CapitalCurve)
	}
}

// gapFadeBars is the canonical short setup: previous close 800, gap-up
// open at 826 holding a low of 825, broken two bars later at a low of 822.
func gapFadeBars() []types.Bar {
	return []types.Bar{
		types.NewBar("09:15", 800, 806, 798, 804),
		types.NewBar("09:20", 826, 828, 825, 827),
		types.NewBar("09:25", 824, 825, 822, 823),
		types.NewBar("09:30", 823, 824, 820, 821),
		types.NewBar("15:00", 820, 821, 815, 818),
		types.NewBar("15:05", 818, 819, 816, 817),
	}
}

func TestRunShortEntryAndSessionClose(t *testing.T) {
	session := newSession(t, 800, gapFadeBars())

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d: %+v", len(results.Trades), results.Trades)
	}

	entry := results.Trades[0]
	if entry.Kind != types.TradeEntry || entry.Side != types.SideSell {
		t.Errorf("entry = %+v, want a SELL entry", entry)
	}
	if entry.Timestamp != "09:25" || entry.Price != 823 {
		t.Errorf("entry at %s @ %v, want 09:25 @ 823", entry.Timestamp, entry.Price)
	}
	if entry.Quantity != 121 {
		t.Errorf("entry quantity = %d, want floor(100000/823) = 121", entry.Quantity)
	}

	exit := results.Trades[1]
	if exit.Kind != types.TradeExit || exit.Reason != types.ExitSessionClose {
		t.Errorf("exit = %+v, want a session close exit", exit)
	}
	if exit.Timestamp != "15:00" || exit.Price != 818 {
		t.Errorf("exit at %s @ %v, want 15:00 @ 818", exit.Timestamp, exit.Price)
	}
	if exit.PnL != 605 {
		t.Errorf("exit PnL = %v, want (823-818)*121 = 605", exit.PnL)
	}

	// The 15:05 bar lies past the cutoff close and is never processed.
	if results.BarsProcessed != 5 {
		t.Errorf("BarsProcessed = %d, want 5", results.BarsProcessed)
	}
	if results.FinalCapital != 100605 {
		t.Errorf("FinalCapital = %v, want 100605", results.FinalCapital)
	}
	if results.WinningTrades != 1 || results.LosingTrades != 0 {
		t.Errorf("win/loss = %d/%d, want 1/0", results.WinningTrades, results.LosingTrades)
	}
}

func TestRunStopLossBeatsSessionClose(t *testing.T) {
	// The 15:00 bar both breaches the stop and crosses the cutoff; the
	// stop must win and the session stays active for the 15:05 bar.
	bars := []types.Bar{
		types.NewBar("09:15", 780, 785, 778, 784),
		types.NewBar("09:20", 800, 805, 799, 803),
		types.NewBar("09:25", 801, 802, 798, 800),
		types.NewBar("15:00", 801, 817, 801, 816),
		types.NewBar("15:05", 816, 817, 814, 815),
	}
	session := newSession(t, 775, bars)

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(results.Trades))
	}

	entry := results.Trades[0]
	if entry.Quantity != 125 || entry.Price != 800 {
		t.Errorf("entry = %+v, want 125 @ 800", entry)
	}

	exit := results.Trades[1]
	if exit.Reason != types.ExitStopLoss {
		t.Errorf("exit reason = %s, want stop loss", exit.Reason)
	}
	if exit.Timestamp != "15:00" {
		t.Errorf("exit at %s, want 15:00", exit.Timestamp)
	}
	if exit.PnL != -2000 {
		t.Errorf("exit PnL = %v, want the exact threshold -2000", exit.PnL)
	}

	if results.BarsProcessed != 5 {
		t.Errorf("BarsProcessed = %d, want 5; a stop exit must not end the session", results.BarsProcessed)
	}
	if results.FinalCapital != 98000 {
		t.Errorf("FinalCapital = %v, want 98000", results.FinalCapital)
	}
	if results.LargestLoss != -2000 {
		t.Errorf("LargestLoss = %v, want -2000", results.LargestLoss)
	}
}

func TestRunTakeProfitAtExactThreshold(t *testing.T) {
	bars := []types.Bar{
		types.NewBar("09:15", 780, 785, 778, 784),
		types.NewBar("09:20", 800, 805, 799, 803),
		types.NewBar("09:25", 801, 802, 798, 800),
		types.NewBar("09:30", 750, 752, 740, 744),
	}
	session := newSession(t, 775, bars)

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(results.Trades))
	}
	exit := results.Trades[1]
	if exit.Reason != types.ExitTakeProfit {
		t.Errorf("exit reason = %s, want take profit", exit.Reason)
	}
	if exit.PnL != 7000 {
		t.Errorf("exit PnL = %v, want the exact threshold (800-744)*125 = 7000", exit.PnL)
	}
	if results.FinalCapital != 107000 {
		t.Errorf("FinalCapital = %v, want 107000", results.FinalCapital)
	}
	if results.LargestWin != 7000 {
		t.Errorf("LargestWin = %v, want 7000", results.LargestWin)
	}
}

func TestRunForceCloseAtEndOfData(t *testing.T) {
	// Data ends with the position still open and no exit condition met.
	bars := gapFadeBars()[:4]
	session := newSession(t, 800, bars)

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(results.Trades))
	}
	exit := results.Trades[1]
	if exit.Reason != types.ExitEndOfData {
		t.Errorf("exit reason = %s, want end of data", exit.Reason)
	}
	if exit.Timestamp != "09:30" || exit.Price != 821 {
		t.Errorf("exit at %s @ %v, want the last bar 09:30 @ 821", exit.Timestamp, exit.Price)
	}
	if exit.PnL != 242 {
		t.Errorf("exit PnL = %v, want (823-821)*121 = 242", exit.PnL)
	}
}

// cappedBars produces two complete setups plus a third breakdown, enough
// to exercise the daily trade cap.
func cappedBars() []types.Bar {
	return []types.Bar{
		types.NewBar("09:15", 800, 806, 798, 804),
		types.NewBar("09:20", 826, 828, 825, 827), // arms
		types.NewBar("09:25", 824, 825, 822, 823), // breakdown, first entry
		types.NewBar("09:30", 823, 841, 822, 840), // stop loss on the first position
		types.NewBar("09:35", 830, 832, 828, 831), // re-arms
		types.NewBar("09:40", 827, 828, 825, 826), // breakdown, second signal
	}
}

func TestRunDailyTradeCap(t *testing.T) {
	session := newSession(t, 800, cappedBars())

	results := runEngine(t, session, EngineConfig{
		Risk: strategy.RiskConfig{MaxDailyTrades: 1},
	})

	if results.TradesOpened != 1 {
		t.Fatalf("TradesOpened = %d, want 1 under a cap of 1", results.TradesOpened)
	}
	if len(results.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(results.Trades))
	}
	if results.Trades[1].Reason != types.ExitStopLoss {
		t.Errorf("exit reason = %s, want stop loss", results.Trades[1].Reason)
	}
	// (823-840)*121 = -2057 realized on the only trade.
	if results.FinalCapital != 97943 {
		t.Errorf("FinalCapital = %v, want 97943", results.FinalCapital)
	}
}

func TestRunLedgerInvariants(t *testing.T) {
	// Default cap of 2 lets both signals execute; the second entry lands
	// on the final bar and is force closed there.
	session := newSession(t, 800, cappedBars())

	results := runEngine(t, session, EngineConfig{})

	if len(results.Trades)%2 != 0 {
		t.Fatalf("ledger has %d trades, want an even count", len(results.Trades))
	}

	pnlSum := 0.0
	for i, trade := range results.Trades {
		if i%2 == 0 {
			if trade.Kind != types.TradeEntry {
				t.Errorf("trade %d kind = %s, want entry", i, trade.Kind)
			}
			continue
		}
		if trade.Kind != types.TradeExit {
			t.Errorf("trade %d kind = %s, want exit", i, trade.Kind)
		}
		pnlSum += trade.PnL
	}

	if got := results.InitialCapital + pnlSum; results.FinalCapital != got {
		t.Errorf("FinalCapital = %v, want initial plus exit PnL sum = %v", results.FinalCapital, got)
	}

	second := results.Trades[3]
	if second.Reason != types.ExitEndOfData || second.PnL != 0 {
		t.Errorf("final exit = %+v, want a zero-PnL end of data close on the entry bar", second)
	}

	if len(results.CapitalCurve) != 3 {
		t.Fatalf("capital curve has %d points, want 3", len(results.CapitalCurve))
	}
	last := results.CapitalCurve[len(results.CapitalCurve)-1]
	if last.Capital != results.FinalCapital {
		t.Errorf("curve ends at %v, want FinalCapital %v", last.Capital, results.FinalCapital)
	}
}

// Two engines over the same session and configuration must produce
// identical ledgers and capital curves; only run metadata may differ.
func TestRunDeterminism(t *testing.T) {
	first := runEngine(t, newSession(t, 800, gapFadeBars()), EngineConfig{})
	second := runEngine(t, newSession(t, 800, gapFadeBars()), EngineConfig{})

	if !reflect.DeepEqual(first.Trades, second.Trades) {
		t.Errorf("ledgers differ:\n%+v\n%+v", first.Trades, second.Trades)
	}
	if !reflect.DeepEqual(first.CapitalCurve, second.CapitalCurve) {
		t.Errorf("capital curves differ:\n%+v\n%+v", first.CapitalCurve, second.CapitalCurve)
	}

	a, err := json.Marshal(first.Trades)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second.Trades)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Error("serialized ledgers are not byte identical")
	}

	if first.RunID == second.RunID {
		t.Error("runs should carry distinct run IDs")
	}
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(nil, EngineConfig{}, quietLogger()); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("nil session: want ErrInvalidConfig, got %v", err)
	}

	session := newSession(t, 800, gapFadeBars())
	if _, err := NewEngine(session, EngineConfig{CloseCutoff: "25:00"}, quietLogger()); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("bad cutoff: want ErrInvalidConfig, got %v", err)
	}

	bad := &types.Session{Instrument: "X", PreviousClose: 800, Capital: -1, Bars: gapFadeBars()}
	if _, err := NewEngine(bad, EngineConfig{}, quietLogger()); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("invalid session: want ErrInvalidConfig, got %v", err)
	}
}

func TestEngineRunsOnce(t *testing.T) {
	engine, err := NewEngine(newSession(t, 800, gapFadeBars()), EngineConfig{}, quietLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if _, err := engine.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	_, err = engine.Run()
	if !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("second Run: want ErrInvalidState, got %v", err)
	}
}
