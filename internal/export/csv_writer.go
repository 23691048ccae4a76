// Package export writes backtest results to CSV files for spreadsheet and
// plotting consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/streaklab/streakback/internal/types"
)

// ResultWriter writes the exportable parts of a backtest report.
type ResultWriter interface {
	// WriteTrades writes the trade records to the output.
	WriteTrades(trades []types.TradeRecord) error
	// WriteDailySeries writes the daily comparison series.
	WriteDailySeries(series []types.SeriesPoint) error
	// Close finalizes the writing process.
	Close() error
}

// CSVWriter implements ResultWriter by writing trades.csv and series.csv
// into a per-run directory under the base directory.
type CSVWriter struct {
	runDir     string
	tradesFile *os.File
	seriesFile *os.File
	tradesCsv  *csv.Writer
	seriesCsv  *csv.Writer
}

// NewCSVWriter creates a CSVWriter rooted at baseDir/<runID>.
func NewCSVWriter(baseDir, runID string) (*CSVWriter, error) {
	runDir := filepath.Join(baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	writer := &CSVWriter{runDir: runDir}

	if err := writer.initFiles(); err != nil {
		return nil, err
	}

	return writer, nil
}

// RunDir returns the directory this writer's files land in.
func (w *CSVWriter) RunDir() string {
	return w.runDir
}

func (w *CSVWriter) initFiles() error {
	tradesFile, err := os.Create(filepath.Join(w.runDir, "trades.csv"))
	if err != nil {
		return fmt.Errorf("failed to create trades file: %w", err)
	}

	w.tradesFile = tradesFile
	w.tradesCsv = csv.NewWriter(tradesFile)

	if err := w.tradesCsv.Write([]string{"date", "action", "shares", "price", "movement_pct"}); err != nil {
		return fmt.Errorf("failed to write trades header: %w", err)
	}

	seriesFile, err := os.Create(filepath.Join(w.runDir, "series.csv"))
	if err != nil {
		return fmt.Errorf("failed to create series file: %w", err)
	}

	w.seriesFile = seriesFile
	w.seriesCsv = csv.NewWriter(seriesFile)

	if err := w.seriesCsv.Write([]string{"date", "strategy_pct", "benchmark_pct", "security_pct"}); err != nil {
		return fmt.Errorf("failed to write series header: %w", err)
	}

	return nil
}

// WriteTrades implements ResultWriter.
func (w *CSVWriter) WriteTrades(trades []types.TradeRecord) error {
	for _, trade := range trades {
		movement := ""
		if trade.MovementPct.IsSome() {
			movement = strconv.FormatFloat(trade.MovementPct.Unwrap(), 'f', 4, 64)
		}

		record := []string{
			trade.Date.Format("2006-01-02"),
			string(trade.Action),
			strconv.FormatInt(trade.Shares, 10),
			strconv.FormatFloat(trade.Price, 'f', 2, 64),
			movement,
		}

		if err := w.tradesCsv.Write(record); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	w.tradesCsv.Flush()

	return w.tradesCsv.Error()
}

// WriteDailySeries implements ResultWriter.
func (w *CSVWriter) WriteDailySeries(series []types.SeriesPoint) error {
	for _, point := range series {
		security := ""
		if point.SecurityPct.IsSome() {
			security = strconv.FormatFloat(point.SecurityPct.Unwrap(), 'f', 4, 64)
		}

		record := []string{
			point.Date.Format("2006-01-02"),
			strconv.FormatFloat(point.StrategyPct, 'f', 4, 64),
			strconv.FormatFloat(point.BenchmarkPct, 'f', 4, 64),
			security,
		}

		if err := w.seriesCsv.Write(record); err != nil {
			return fmt.Errorf("failed to write series point: %w", err)
		}
	}

	w.seriesCsv.Flush()

	return w.seriesCsv.Error()
}

// Close implements ResultWriter.
func (w *CSVWriter) Close() error {
	w.tradesCsv.Flush()
	w.seriesCsv.Flush()

	if err := w.tradesFile.Close(); err != nil {
		return fmt.Errorf("failed to close trades file: %w", err)
	}

	if err := w.seriesFile.Close(); err != nil {
		return fmt.Errorf("failed to close series file: %w", err)
	}

	return nil
}
