package strategy

import (
	"errors"
	"testing"

	"gapfade/internal/types"
)

func newTestRiskManager(t *testing.T, capital float64) *RiskManager {
	t.Helper()
	rm, err := NewRiskManager(RiskConfig{}, capital)
	if err != nil {
		t.Fatalf("NewRiskManager: %v", err)
	}
	return rm
}

func TestNewRiskManagerDefaults(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	if rm.StopLossFraction != 0.02 || rm.TakeProfitFraction != 0.07 {
		t.Errorf("fractions = %v/%v, want 0.02/0.07", rm.StopLossFraction, rm.TakeProfitFraction)
	}
	if rm.MaxDailyTrades != 2 {
		t.Errorf("MaxDailyTrades = %d, want 2", rm.MaxDailyTrades)
	}
	if rm.StopLossAmount() != 2000 {
		t.Errorf("StopLossAmount = %v, want 2000", rm.StopLossAmount())
	}
	if rm.TakeProfitAmount() != 7000 {
		t.Errorf("TakeProfitAmount = %v, want 7000", rm.TakeProfitAmount())
	}
}

func TestNewRiskManagerValidation(t *testing.T) {
	if _, err := NewRiskManager(RiskConfig{}, 0); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("zero capital: want ErrInvalidConfig, got %v", err)
	}
	if _, err := NewRiskManager(RiskConfig{StopLossFraction: -0.01}, 100000); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("negative stop loss: want ErrInvalidConfig, got %v", err)
	}
	if _, err := NewRiskManager(RiskConfig{MaxDailyTrades: -1}, 100000); !errors.Is(err, types.ErrInvalidConfig) {
		t.Errorf("negative trade cap: want ErrInvalidConfig, got %v", err)
	}
}

func TestPositionSizeFloors(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	tests := []struct {
		price float64
		want  int
	}{
		{823, 121},  // 100000/823 = 121.506...
		{800, 125},  // exact division
		{100001, 0}, // cannot afford a single unit
	}
	for _, tt := range tests {
		if got := rm.PositionSize(tt.price); got != tt.want {
			t.Errorf("PositionSize(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}

	if rm.PositionSize(0) != 0 {
		t.Error("PositionSize(0) should be 0")
	}
	if rm.PositionSize(-5) != 0 {
		t.Error("PositionSize with negative price should be 0")
	}
}

func TestPositionSizeTracksCurrentCapital(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	rm.ApplyRealizedPnL(-2000)

	if got := rm.PositionSize(800); got != 122 {
		t.Errorf("PositionSize after loss = %d, want floor(98000/800)=122", got)
	}
}

func TestThresholdsFixedAtStartingCapital(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	rm.ApplyRealizedPnL(50000)

	// Capital doubled mid-session; thresholds do not move.
	if rm.StopLossAmount() != 2000 || rm.TakeProfitAmount() != 7000 {
		t.Errorf("thresholds moved to %v/%v after capital change", rm.StopLossAmount(), rm.TakeProfitAmount())
	}
}

func TestStopLossHitAtExactThreshold(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	if rm.StopLossHit(-1999.99) {
		t.Error("loss short of the threshold must not trigger the stop")
	}
	if !rm.StopLossHit(-2000) {
		t.Error("loss exactly at the threshold must trigger the stop")
	}
	if !rm.StopLossHit(-2500) {
		t.Error("loss past the threshold must trigger the stop")
	}
}

func TestTakeProfitHitAtExactThreshold(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	if rm.TakeProfitHit(6999.99) {
		t.Error("profit short of the threshold must not trigger the target")
	}
	if !rm.TakeProfitHit(7000) {
		t.Error("profit exactly at the threshold must trigger the target")
	}
}

func TestDailyTradeCap(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	if !rm.CanOpen() {
		t.Fatal("fresh session should allow an entry")
	}
	rm.RecordOpen()
	if !rm.CanOpen() {
		t.Fatal("second entry should still be allowed")
	}
	rm.RecordOpen()
	if rm.CanOpen() {
		t.Error("third entry should be blocked by the daily cap")
	}
	if rm.TradesOpened() != 2 {
		t.Errorf("TradesOpened = %d, want 2", rm.TradesOpened())
	}
}

func TestCapitalAccounting(t *testing.T) {
	rm := newTestRiskManager(t, 100000)

	rm.ApplyRealizedPnL(1500)
	rm.ApplyRealizedPnL(-500)

	if rm.CurrentCapital() != 101000 {
		t.Errorf("CurrentCapital = %v, want 101000", rm.CurrentCapital())
	}
	if rm.TotalPnL() != 1000 {
		t.Errorf("TotalPnL = %v, want 1000", rm.TotalPnL())
	}
	if rm.TotalPnLPercent() != 1 {
		t.Errorf("TotalPnLPercent = %v, want 1", rm.TotalPnLPercent())
	}
	if rm.InitialCapital() != 100000 {
		t.Errorf("InitialCapital = %v, want 100000", rm.InitialCapital())
	}
}
