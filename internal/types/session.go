package types

import "fmt"

// Session holds all market data for one instrument's trading day:
// the previous session's close, the capital allocated to the session,
// and the ordered bar sequence. Immutable once constructed; owned
// exclusively by the engine for the duration of one run.
type Session struct {
	Instrument    string  `json:"instrument"`
	PreviousClose float64 `json:"previous_day_close"`
	Capital       float64 `json:"capital"`
	Bars          []Bar   `json:"candles"`
}

// NewSession builds a session and rejects caller-input errors before any
// simulation step can run.
func NewSession(instrument string, previousClose, capital float64, bars []Bar) (*Session, error) {
	s := &Session{
		Instrument:    instrument,
		PreviousClose: previousClose,
		Capital:       capital,
		Bars:          bars,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session invariants the engine relies on: positive
// capital and previous close, a non-empty bar sequence, parseable
// timestamps in non-decreasing order, and sane OHLC relationships.
func (s *Session) Validate() error {
	if s.Capital <= 0 {
		return fmt.Errorf("%w: capital must be positive, got %v", ErrInvalidConfig, s.Capital)
	}
	if s.PreviousClose <= 0 {
		return fmt.Errorf("%w: previous close must be positive, got %v", ErrInvalidConfig, s.PreviousClose)
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("%w: bar sequence is empty", ErrInvalidConfig)
	}

	prevMinute := -1
	for i, bar := range s.Bars {
		minute, err := ParseClock(bar.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: bar %d: %v", ErrInvalidConfig, i, err)
		}
		if minute < prevMinute {
			return fmt.Errorf("%w: bar %d (%s) is earlier than the previous bar", ErrInvalidConfig, i, bar.Timestamp)
		}
		prevMinute = minute

		if bar.High < bar.Low {
			return fmt.Errorf("%w: bar %d (%s): high %v below low %v", ErrInvalidConfig, i, bar.Timestamp, bar.High, bar.Low)
		}
		if bar.Open < bar.Low || bar.Open > bar.High || bar.Close < bar.Low || bar.Close > bar.High {
			return fmt.Errorf("%w: bar %d (%s): open/close outside [low, high]", ErrInvalidConfig, i, bar.Timestamp)
		}
		if bar.Low < 0 {
			return fmt.Errorf("%w: bar %d (%s): negative price", ErrInvalidConfig, i, bar.Timestamp)
		}
	}

	return nil
}

// LastBar returns the final bar of the session. Only valid on a
// validated (non-empty) session.
func (s *Session) LastBar() Bar {
	return s.Bars[len(s.Bars)-1]
}
