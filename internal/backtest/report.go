package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gapfade/internal/indicators"
	"gapfade/internal/types"

	"github.com/shopspring/decimal"
)

// Report renders completed results for humans: a console summary plus an
// optional CSV trade export and indicator summary.
type Report struct {
	results *Results
	session *types.Session
}

// NewReport creates a report for a completed run
func NewReport(results *Results, session *types.Session) *Report {
	return &Report{
		results: results,
		session: session,
	}
}

// WriteSummary writes the end-of-session summary to the given writer.
func (r *Report) WriteSummary(w io.Writer) {
	res := r.results

	fmt.Fprintln(w, "================================================================")
	fmt.Fprintln(w, "                    END OF SESSION SUMMARY")
	fmt.Fprintln(w, "================================================================")
	fmt.Fprintf(w, "Instrument:       %s\n", res.Instrument)
	fmt.Fprintf(w, "Previous Close:   %s\n", money(r.session.PreviousClose))
	fmt.Fprintf(w, "Bars Processed:   %d\n", res.BarsProcessed)
	fmt.Fprintf(w, "Trades Opened:    %d\n", res.TradesOpened)
	fmt.Fprintf(w, "Initial Capital:  %s\n", money(res.InitialCapital))
	fmt.Fprintf(w, "Final Capital:    %s\n", money(res.FinalCapital))
	fmt.Fprintf(w, "Total PnL:        %s\n", money(res.TotalPnL))
	fmt.Fprintf(w, "Return:           %.2f%%\n", res.ReturnPercent)
	fmt.Fprintf(w, "Stop Loss:        %s    Take Profit: %s\n",
		money(res.StopLossAmount), money(res.TakeProfitAmount))

	if res.WinningTrades+res.LosingTrades > 0 {
		fmt.Fprintf(w, "Win Rate:         %.1f%% (%d won / %d lost)\n",
			res.WinRate(), res.WinningTrades, res.LosingTrades)
	}
	fmt.Fprintln(w, "================================================================")

	if len(res.Trades) > 0 {
		fmt.Fprintln(w, "\nTrade Log:")
		fmt.Fprintln(w, "----------------------------------------------------------------")
		for _, trade := range res.Trades {
			line := fmt.Sprintf("%s | %-5s | %-4s | %6d @ %s",
				trade.Timestamp, trade.Kind, trade.Side, trade.Quantity, money(trade.Price))
			if trade.IsExit() {
				line += fmt.Sprintf(" | PnL: %s (%s)", money(trade.PnL), trade.Reason)
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, "----------------------------------------------------------------")
	}
}

// WriteIndicatorSummary appends a batch-indicator recap for the session,
// derived independently of the engine's incremental state.
func (r *Report) WriteIndicatorSummary(w io.Writer, analyzer *indicators.Analyzer) {
	series := analyzer.Analyze(r.session.Bars)
	if len(series.Closes) == 0 {
		return
	}

	last := len(series.Closes) - 1
	fmt.Fprintln(w, "\nIndicator Summary (session close):")
	fmt.Fprintf(w, "  Close:     %s\n", money(series.Closes[last]))
	fmt.Fprintf(w, "  Fast EMA:  %s\n", money(series.FastEMA[last]))
	fmt.Fprintf(w, "  Slow EMA:  %s\n", money(series.SlowEMA[last]))
	if last < len(series.SMA) {
		fmt.Fprintf(w, "  SMA:       %s\n", money(series.SMA[last]))
	}
}

// ExportTradesCSV writes the trade ledger to a timestamped CSV file in
// the given directory and returns the file path.
func (r *Report) ExportTradesCSV(directory string) (string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	filename := fmt.Sprintf("trades_%s_%s.csv", r.results.Instrument, time.Now().Format("20060102_150405"))
	path := filepath.Join(directory, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create trades file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"Timestamp", "Kind", "Side", "Quantity", "Price", "PnL", "Reason"}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	// Write trades
	for _, trade := range r.results.Trades {
		record := []string{
			trade.Timestamp,
			string(trade.Kind),
			string(trade.Side),
			fmt.Sprintf("%d", trade.Quantity),
			money(trade.Price),
			money(trade.PnL),
			string(trade.Reason),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	return path, nil
}

// money renders a currency amount with exactly two decimals.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
