package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gapfade/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps logrus logger with additional functionality
type Logger struct {
	*logrus.Logger
	component string
}

// Global logger instance
var globalLogger *Logger

// NewLogger creates a new logger with the given configuration
func NewLogger(cfg config.LoggingConfig) *Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set formatter
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	// Set output
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "file":
		output = createFileWriter(cfg)
	case "both":
		output = io.MultiWriter(os.Stdout, createFileWriter(cfg))
	default:
		output = os.Stdout
	}

	logger.SetOutput(output)

	return &Logger{
		Logger: logger,
	}
}

// createFileWriter creates a rotating file writer
func createFileWriter(cfg config.LoggingConfig) io.Writer {
	// Ensure log directory exists
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		fmt.Printf("Warning: Failed to create log directory: %v\n", err)
		return os.Stdout
	}

	logFile := filepath.Join(cfg.Directory, "gapfade.log")

	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.MaxSize, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}
}

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg config.LoggingConfig) {
	globalLogger = NewLogger(cfg)
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Create default logger if not initialized
		globalLogger = NewLogger(config.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		})
	}
	return globalLogger
}

// NewComponentLogger creates a logger for a specific component
func NewComponentLogger(component string) *Logger {
	baseLogger := GetGlobalLogger()
	return &Logger{
		Logger:    baseLogger.Logger,
		component: component,
	}
}

// Logging methods with component awareness

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.component != "" {
		l.WithField("component", l.component).Debugf(format, args...)
	} else {
		l.Logger.Debugf(format, args...)
	}
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.component != "" {
		l.WithField("component", l.component).Infof(format, args...)
	} else {
		l.Logger.Infof(format, args...)
	}
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.component != "" {
		l.WithField("component", l.component).Warnf(format, args...)
	} else {
		l.Logger.Warnf(format, args...)
	}
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.component != "" {
		l.WithField("component", l.component).Errorf(format, args...)
	} else {
		l.Logger.Errorf(format, args...)
	}
}

// WithField adds a single field to the logger
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Logger.WithField(key, value)
}

// Trading-specific logging methods

// LogBar logs a per-bar snapshot: OHLC, indicator values, position state
func (l *Logger) LogBar(timestamp string, open, high, low, close, fastEMA, slowEMA float64, positionOpen bool) {
	l.WithFields(logrus.Fields{
		"event":         "bar",
		"timestamp":     timestamp,
		"open":          open,
		"high":          high,
		"low":           low,
		"close":         close,
		"fast_ema":      fastEMA,
		"slow_ema":      slowEMA,
		"position_open": positionOpen,
	}).Info("Bar processed")
}

// LogTrade logs a trade execution
func (l *Logger) LogTrade(kind string, side string, quantity int, price float64, timestamp string) {
	l.WithFields(logrus.Fields{
		"event":     "trade",
		"kind":      kind,
		"side":      side,
		"quantity":  quantity,
		"price":     price,
		"timestamp": timestamp,
		"value":     float64(quantity) * price,
	}).Info("Trade executed")
}

// LogExit logs a position close with its reason and realized PnL
func (l *Logger) LogExit(reason string, pnl float64, pnlPercent float64, timestamp string) {
	l.WithFields(logrus.Fields{
		"event":       "exit",
		"reason":      reason,
		"pnl":         pnl,
		"pnl_percent": pnlPercent,
		"timestamp":   timestamp,
	}).Info("Position closed")
}

// LogSignal logs a trading signal
func (l *Logger) LogSignal(side string, price float64, timestamp string, reason string) {
	l.WithFields(logrus.Fields{
		"event":     "signal",
		"side":      side,
		"price":     price,
		"timestamp": timestamp,
		"reason":    reason,
	}).Info("Pattern signal generated")
}

// LogRisk logs a risk management event
func (l *Logger) LogRisk(riskType string, message string, value float64, threshold float64) {
	l.WithFields(logrus.Fields{
		"event":     "risk",
		"risk_type": riskType,
		"value":     value,
		"threshold": threshold,
	}).Warn(message)
}

// Global convenience functions

// Debugf logs a formatted debug message using the global logger
func Debugf(format string, args ...interface{}) {
	GetGlobalLogger().Debugf(format, args...)
}

// Infof logs a formatted info message using the global logger
func Infof(format string, args ...interface{}) {
	GetGlobalLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message using the global logger
func Warnf(format string, args ...interface{}) {
	GetGlobalLogger().Warnf(format, args...)
}

// Errorf logs a formatted error message using the global logger
func Errorf(format string, args ...interface{}) {
	GetGlobalLogger().Errorf(format, args...)
}
