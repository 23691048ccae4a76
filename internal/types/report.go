package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// SeriesPoint is one row of the daily comparison series. Percentages are
// relative to each series' first in-window value.
type SeriesPoint struct {
	Date         time.Time                `csv:"date" json:"date" yaml:"date"`
	StrategyPct  float64                  `csv:"strategy_pct" json:"strategy_pct" yaml:"strategy_pct"`
	BenchmarkPct float64                  `csv:"benchmark_pct" json:"benchmark_pct" yaml:"benchmark_pct"`
	SecurityPct  optional.Option[float64] `csv:"security_pct" json:"security_pct,omitempty" yaml:"security_pct,omitempty"`
}

// BacktestReport is the complete result of one backtest run.
type BacktestReport struct {
	// ID is the unique identifier for this backtest run.
	ID string `json:"id" yaml:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// Symbol of the backtested security.
	Symbol string `json:"symbol" yaml:"symbol"`
	// BenchmarkSymbol of the passive comparison index.
	BenchmarkSymbol    string  `json:"benchmark_symbol" yaml:"benchmark_symbol"`
	InitialInvestment  float64 `json:"initial_investment" yaml:"initial_investment"`
	FinalValue         float64 `json:"final_value" yaml:"final_value"`
	TotalReturnPct     float64 `json:"total_return_pct" yaml:"total_return_pct"`
	BenchmarkReturnPct float64 `json:"benchmark_return_pct" yaml:"benchmark_return_pct"`
	// SecurityReturnPct is the buy-and-hold return of the security itself.
	// Only reported for the scaled size policy.
	SecurityReturnPct optional.Option[float64] `json:"security_return_pct,omitempty" yaml:"security_return_pct,omitempty"`
	TradeCount        int                      `json:"trade_count" yaml:"trade_count"`
	Trades            []TradeRecord            `json:"trades" yaml:"trades"`
	// LastTrades holds the tail of the trade list for quick display.
	LastTrades  []TradeRecord `json:"last_trades" yaml:"last_trades"`
	DailySeries []SeriesPoint `json:"daily_series" yaml:"daily_series"`
}

// LastTradeCount is how many trailing trades a report keeps in LastTrades.
const LastTradeCount = 5

// LastN returns the trailing n elements of trades without copying the
// underlying records.
func LastN(trades []TradeRecord, n int) []TradeRecord {
	if len(trades) <= n {
		return trades
	}

	return trades[len(trades)-n:]
}
