package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `json:"app"`
	Strategy StrategyConfig `json:"strategy"`
	Risk     RiskConfig     `json:"risk"`
	Session  SessionConfig  `json:"session"`
	Logging  LoggingConfig  `json:"logging"`
	Report   ReportConfig   `json:"report"`
}

// AppConfig contains basic application configuration
type AppConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"` // "development", "production", "test"
	Debug       bool   `json:"debug"`
}

// StrategyConfig contains gap-fade strategy configuration
type StrategyConfig struct {
	GapThreshold     float64 `json:"gap_threshold"`      // minimum opening gap (0.03 = 3%)
	FastPeriod       int     `json:"fast_period"`        // fast EMA period (3)
	SlowPeriod       int     `json:"slow_period"`        // slow EMA period (5)
	RequireFastReady bool    `json:"require_fast_ready"` // also gate arming on the fast EMA
}

// RiskConfig contains risk management configuration
type RiskConfig struct {
	StopLossFraction   float64 `json:"stop_loss_fraction"`   // 2% of starting capital
	TakeProfitFraction float64 `json:"take_profit_fraction"` // 7% of starting capital
	MaxDailyTrades     int     `json:"max_daily_trades"`     // 2 entries per session
}

// SessionConfig contains session timing configuration
type SessionConfig struct {
	CloseCutoff string `json:"close_cutoff"` // "HH:MM"; bars at or past this force a square-off
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Output
	Level     string `json:"level"`     // "debug", "info", "warn", "error"
	Format    string `json:"format"`    // "json", "text"
	Output    string `json:"output"`    // "stdout", "file", "both"
	Directory string `json:"directory"` // log file directory

	// File rotation
	MaxSize    int  `json:"max_size"`    // max MB per file
	MaxBackups int  `json:"max_backups"` // max number of old files
	MaxAge     int  `json:"max_age"`     // max days to retain
	Compress   bool `json:"compress"`    // compress old files
}

// ReportConfig contains report output configuration
type ReportConfig struct {
	ExportTrades     bool   `json:"export_trades"`     // write the trade log as CSV
	ResultsDirectory string `json:"results_directory"` // where CSV exports land
	IndicatorSummary bool   `json:"indicator_summary"` // include batch indicator series stats
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "Gap-Fade Backtest Engine",
			Version:     "1.0.0",
			Environment: "development",
			Debug:       false,
		},
		Strategy: StrategyConfig{
			GapThreshold:     0.03, // 3%
			FastPeriod:       3,
			SlowPeriod:       5,
			RequireFastReady: false,
		},
		Risk: RiskConfig{
			StopLossFraction:   0.02, // 2%
			TakeProfitFraction: 0.07, // 7%
			MaxDailyTrades:     2,
		},
		Session: SessionConfig{
			CloseCutoff: "15:00",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Directory:  "./logs",
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		},
		Report: ReportConfig{
			ExportTrades:     false,
			ResultsDirectory: "./results",
			IndicatorSummary: true,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config if file doesn't exist
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	// Read file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON
	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate strategy config
	if c.Strategy.GapThreshold < 0 {
		return fmt.Errorf("gap threshold must not be negative")
	}
	if c.Strategy.FastPeriod <= 0 {
		return fmt.Errorf("fast EMA period must be positive")
	}
	if c.Strategy.SlowPeriod <= 0 {
		return fmt.Errorf("slow EMA period must be positive")
	}

	// Validate risk config
	if c.Risk.StopLossFraction <= 0 || c.Risk.StopLossFraction > 1 {
		return fmt.Errorf("stop loss fraction must be between 0 and 1")
	}
	if c.Risk.TakeProfitFraction <= 0 || c.Risk.TakeProfitFraction > 1 {
		return fmt.Errorf("take profit fraction must be between 0 and 1")
	}
	if c.Risk.MaxDailyTrades <= 0 {
		return fmt.Errorf("max daily trades must be positive")
	}

	// Validate session config
	if c.Session.CloseCutoff == "" {
		return fmt.Errorf("session close cutoff is required")
	}

	// Validate logging config
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := []string{"json", "text"}
	formatValid := false
	for _, format := range validFormats {
		if c.Logging.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// GetEnv returns environment variable with default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool returns boolean environment variable with default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
