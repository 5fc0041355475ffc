// Package data loads session market data from disk and validates it
// before it reaches the simulation engine. The engine assumes validated
// input; this boundary is where malformed files fail fast.
package data

import (
	"encoding/json"
	"fmt"
	"os"

	"gapfade/internal/types"
)

// LoadSession reads a session market-data JSON file:
//
//	{
//	  "instrument": "RELIANCE",
//	  "previous_day_close": 800.0,
//	  "capital": 100000.0,
//	  "candles": [{"timestamp": "09:15", "open": ..., "high": ..., "low": ..., "close": ...}, ...]
//	}
//
// Validation failures are configuration errors, never retried.
func LoadSession(path string) (*types.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market data file: %w", err)
	}

	session := &types.Session{}
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, fmt.Errorf("failed to parse market data file %s: %w", path, err)
	}

	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("market data file %s: %w", path, err)
	}

	return session, nil
}

// SaveSession writes a session back out as indented JSON. Used by the
// sample-data generator.
func SaveSession(session *types.Session, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write market data file: %w", err)
	}

	return nil
}
