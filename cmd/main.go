package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gapfade/internal/backtest"
	"gapfade/internal/config"
	"gapfade/internal/data"
	"gapfade/internal/indicators"
	"gapfade/internal/logging"
	"gapfade/internal/strategy"
	"gapfade/internal/types"

	"github.com/sirupsen/logrus"
)

const (
	// Application constants
	AppName           = "Gap-Fade Backtest Engine"
	AppVersion        = "1.0.0"
	DefaultConfigPath = "./config.json"
	DefaultDataPath   = "market_data.json"
)

var (
	// Command line flags
	configPath = flag.String("config", DefaultConfigPath, "Path to configuration file")
	dataPath   = flag.String("data", DefaultDataPath, "Path to session market data file")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override debug mode if specified
	if *debugMode {
		cfg.App.Debug = true
		cfg.Logging.Level = "debug"
	}

	// Initialize logging
	logging.InitGlobalLogger(cfg.Logging)
	logger := logging.NewComponentLogger("engine")

	logger.WithField("version", AppVersion).Infof("Starting %s", AppName)

	// Load and validate session data
	session, err := data.LoadSession(*dataPath)
	if err != nil {
		if errors.Is(err, types.ErrInvalidConfig) {
			return fmt.Errorf("invalid market data: %w", err)
		}
		return fmt.Errorf("failed to load market data: %w", err)
	}

	logging.GetGlobalLogger().WithFields(logrus.Fields{
		"instrument": session.Instrument,
		"bars":       len(session.Bars),
	}).Infof("Loaded session data from %s", *dataPath)

	// Build and run the engine
	engine, err := backtest.NewEngine(session, backtest.EngineConfig{
		Strategy: strategy.GapFadeConfig{
			GapThreshold:     cfg.Strategy.GapThreshold,
			FastPeriod:       cfg.Strategy.FastPeriod,
			SlowPeriod:       cfg.Strategy.SlowPeriod,
			RequireFastReady: cfg.Strategy.RequireFastReady,
		},
		Risk: strategy.RiskConfig{
			StopLossFraction:   cfg.Risk.StopLossFraction,
			TakeProfitFraction: cfg.Risk.TakeProfitFraction,
			MaxDailyTrades:     cfg.Risk.MaxDailyTrades,
		},
		CloseCutoff: cfg.Session.CloseCutoff,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	results, err := engine.Run()
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	// Render the report
	report := backtest.NewReport(results, session)
	report.WriteSummary(os.Stdout)

	if cfg.Report.IndicatorSummary {
		analyzer := indicators.NewAnalyzer(indicators.AnalyzerConfig{
			FastPeriod: cfg.Strategy.FastPeriod,
			SlowPeriod: cfg.Strategy.SlowPeriod,
		})
		report.WriteIndicatorSummary(os.Stdout, analyzer)
	}

	if cfg.Report.ExportTrades {
		path, err := report.ExportTradesCSV(cfg.Report.ResultsDirectory)
		if err != nil {
			return fmt.Errorf("failed to export trades: %w", err)
		}
		logger.Infof("Trades exported to %s", path)
	}

	return nil
}
