package strategy

import (
	"fmt"

	"gapfade/internal/types"
)

// PositionManager tracks the single open position for a session and
// computes its mark-to-market value. Open/Close misuse surfaces as
// invalid-state errors rather than silent corruption.
type PositionManager struct {
	position types.Position
}

// NewPositionManager creates a position manager with no open position
func NewPositionManager() *PositionManager {
	return &PositionManager{}
}

// Open opens a position. Fails if one is already open.
func (pm *PositionManager) Open(side types.Side, price float64, quantity int, timestamp string) error {
	if pm.position.IsOpen {
		return fmt.Errorf("%w: position already open (entered %s)", types.ErrInvalidState, pm.position.EntryTimestamp)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", types.ErrInvalidState, quantity)
	}

	pm.position = types.Position{
		IsOpen:         true,
		Side:           side,
		EntryPrice:     price,
		Quantity:       quantity,
		EntryTimestamp: timestamp,
	}
	return nil
}

// Close closes the open position at the given price and returns the
// realized PnL. Fails if no position is open.
func (pm *PositionManager) Close(price float64) (float64, error) {
	if !pm.position.IsOpen {
		return 0, fmt.Errorf("%w: no open position to close", types.ErrInvalidState)
	}

	pnl := pm.position.UnrealizedPnL(price)
	pm.position = types.Position{}
	return pnl, nil
}

// UnrealizedPnL marks the open position to the given price. Zero when flat.
func (pm *PositionManager) UnrealizedPnL(currentPrice float64) float64 {
	return pm.position.UnrealizedPnL(currentPrice)
}

// IsOpen reports whether a position is currently open
func (pm *PositionManager) IsOpen() bool {
	return pm.position.IsOpen
}

// Position returns a copy of the current position state
func (pm *PositionManager) Position() types.Position {
	return pm.position
}
