package types

// Side represents the direction of a trade
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeKind distinguishes entries from exits in the trade log
type TradeKind string

const (
	TradeEntry TradeKind = "ENTRY"
	TradeExit  TradeKind = "EXIT"
)

// ExitReason explains why a position was closed
type ExitReason string

const (
	ExitStopLoss     ExitReason = "stop loss"
	ExitTakeProfit   ExitReason = "take profit"
	ExitSessionClose ExitReason = "session close"
	ExitEndOfData    ExitReason = "end of data"
)

// Trade is an immutable trade-log entry. PnL and Reason are only
// meaningful for exit trades; entries leave them zero-valued.
type Trade struct {
	Timestamp string     `json:"timestamp"`
	Side      Side       `json:"side"`
	Kind      TradeKind  `json:"kind"`
	Price     float64    `json:"price"`
	Quantity  int        `json:"quantity"`
	PnL       float64    `json:"pnl"`
	Reason    ExitReason `json:"reason,omitempty"`
}

// NewEntryTrade creates an entry trade record
func NewEntryTrade(timestamp string, side Side, price float64, quantity int) Trade {
	return Trade{
		Timestamp: timestamp,
		Side:      side,
		Kind:      TradeEntry,
		Price:     price,
		Quantity:  quantity,
	}
}

// NewExitTrade creates an exit trade record with realized PnL
func NewExitTrade(timestamp string, side Side, price float64, quantity int, pnl float64, reason ExitReason) Trade {
	return Trade{
		Timestamp: timestamp,
		Side:      side,
		Kind:      TradeExit,
		Price:     price,
		Quantity:  quantity,
		PnL:       pnl,
		Reason:    reason,
	}
}

// IsExit returns true for exit trades
func (t Trade) IsExit() bool {
	return t.Kind == TradeExit
}
