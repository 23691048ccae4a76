// Package marketdata supplies ordered daily price bars for the backtester.
// Fetching is the only blocking operation in a backtest; retries and
// validation live here so the engine itself stays deterministic.
package marketdata

import (
	"context"
	"time"

	"github.com/streaklab/streakback/internal/types"
)

// Provider fetches ordered daily closing price bars for a symbol over a
// date range. Implementations validate the symbol and return a typed data
// error when nothing is available; they never return a partial series
// alongside an error.
type Provider interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PriceBar, error)
}
