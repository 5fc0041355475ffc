package types

// Position represents the single open trading position. The model supports
// at most one open position at a time: no hedging, no partial netting.
type Position struct {
	IsOpen         bool    `json:"is_open"`
	Side           Side    `json:"side"`
	EntryPrice     float64 `json:"entry_price"`
	Quantity       int     `json:"quantity"`
	EntryTimestamp string  `json:"entry_timestamp"`
}

// UnrealizedPnL marks the position to market at the given price.
// Short positions profit as price falls, long positions as it rises.
// Returns 0 when no position is open.
func (p Position) UnrealizedPnL(currentPrice float64) float64 {
	if !p.IsOpen {
		return 0
	}

	diff := currentPrice - p.EntryPrice
	if p.Side == SideBuy {
		return diff * float64(p.Quantity)
	}
	return -diff * float64(p.Quantity)
}

// Notional returns the entry notional value of the position
func (p Position) Notional() float64 {
	return p.EntryPrice * float64(p.Quantity)
}
