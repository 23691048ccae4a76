package engine

import (
	"context"

	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/marketdata"
)

// Engine runs one momentum-reversal backtest per call. Implementations keep
// no state across runs; concurrent callers each get an isolated portfolio.
type Engine interface {
	// Initialize the engine with the given yaml configuration.
	Initialize(config string) error
	// SetDataProvider sets the price series provider used for fetching
	// the security and benchmark history.
	SetDataProvider(provider marketdata.Provider) error
	// Run executes the backtest and returns the complete report, or a
	// typed error. No partial report is returned on failure. The context
	// can be used to abandon the run early.
	Run(ctx context.Context) (*types.BacktestReport, error)
}
