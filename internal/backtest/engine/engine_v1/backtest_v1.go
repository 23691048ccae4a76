// Package engine contains the first version of the streak backtest engine:
// a deterministic single pass over pre-fetched daily bars.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/streaklab/streakback/internal/backtest/engine"
	"github.com/streaklab/streakback/internal/logger"
	"github.com/streaklab/streakback/internal/performance"
	"github.com/streaklab/streakback/internal/strategy"
	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
	"github.com/streaklab/streakback/pkg/marketdata"
)

type BacktestEngineV1 struct {
	config   BacktestConfig
	provider marketdata.Provider
	log      *logger.Logger
	now      func() time.Time
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:   BacktestConfig{},
		provider: nil,
		log:      nil,
		now:      time.Now,
	}
}

// NewBacktestEngineV1FromConfig builds an engine around an already
// assembled config, for callers that construct configs programmatically
// rather than from a yaml document.
func NewBacktestEngineV1FromConfig(config BacktestConfig) (*BacktestEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	return &BacktestEngineV1{
		config:   config,
		provider: nil,
		log:      log,
		now:      time.Now,
	}, nil
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	b.config = parsed

	if b.log == nil {
		b.log, err = logger.NewLogger()
		if err != nil {
			return err
		}
	}

	b.log.Debug("Backtest engine initialized",
		zap.String("symbol", b.config.Symbol),
		zap.String("benchmark", b.config.Benchmark()),
	)

	return nil
}

// SetDataProvider implements engine.Engine.
func (b *BacktestEngineV1) SetDataProvider(provider marketdata.Provider) error {
	if provider == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "provider must not be nil")
	}

	b.provider = provider

	return nil
}

// Run implements engine.Engine. Each call builds a fresh portfolio and
// streak state, so an engine value is safe to reuse for sequential runs
// with the same configuration.
func (b *BacktestEngineV1) Run(ctx context.Context) (*types.BacktestReport, error) {
	if b.provider == nil {
		return nil, errors.New(errors.ErrCodeBacktestFailed, "no data provider configured")
	}

	if b.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return nil, err
		}

		b.log = log
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	start, end := b.config.ResolvedRange(b.now())

	bars, err := b.provider.FetchDailyBars(ctx, b.config.Symbol, start, end)
	if err != nil {
		return nil, err
	}

	benchmarkBars, err := b.provider.FetchDailyBars(ctx, b.config.Benchmark(), start, end)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no data available for %s", b.config.Symbol)
	}

	if len(benchmarkBars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no data available for benchmark %s", b.config.Benchmark())
	}

	policy := b.config.SizePolicy()

	portfolio, values, err := b.scan(bars, policy)
	if err != nil {
		return nil, err
	}

	// Final value is the portfolio marked at the last processed bar's
	// close, which is exactly the tail of the valuation series.
	finalValue := values[len(values)-1].Value

	benchmarkReturn, err := performance.SeriesReturnPct(benchmarkBars)
	if err != nil {
		return nil, err
	}

	securityReturn := optional.None[float64]()

	var securityBars []types.PriceBar

	if policy.ReportsSecurityReturn() {
		pct, err := performance.SeriesReturnPct(bars)
		if err != nil {
			return nil, err
		}

		securityReturn = optional.Some(pct)
		securityBars = bars
	}

	series, err := performance.BuildDailySeries(values, benchmarkBars, securityBars)
	if err != nil {
		return nil, err
	}

	trades := portfolio.Trades()

	report := &types.BacktestReport{
		ID:                 uuid.New().String(),
		Timestamp:          b.now(),
		Symbol:             b.config.Symbol,
		BenchmarkSymbol:    b.config.Benchmark(),
		InitialInvestment:  b.config.InitialInvestment,
		FinalValue:         finalValue,
		TotalReturnPct:     performance.TotalReturnPct(finalValue, b.config.InitialInvestment),
		BenchmarkReturnPct: benchmarkReturn,
		SecurityReturnPct:  securityReturn,
		TradeCount:         len(trades),
		Trades:             trades,
		LastTrades:         types.LastN(trades, types.LastTradeCount),
		DailySeries:        series,
	}

	b.log.Info("Backtest complete",
		zap.String("id", report.ID),
		zap.String("symbol", report.Symbol),
		zap.Float64("final_value", report.FinalValue),
		zap.Float64("total_return_pct", report.TotalReturnPct),
		zap.Int("trade_count", report.TradeCount),
	)

	return report, nil
}

// scan walks the bars once: advance the streak, decide, apply, and record
// the portfolio valuation for the day. The scan bound comes from the size
// policy; the scaled policy deliberately stops short of the series end.
func (b *BacktestEngineV1) scan(bars []types.PriceBar, policy strategy.SizePolicy) (*Portfolio, []performance.ValuePoint, error) {
	portfolio := NewPortfolio(b.config.InitialInvestment)
	state := strategy.StreakState{}

	scanEnd := policy.ScanEnd(len(bars), b.config.ConsecutiveDays)
	if scanEnd == 0 {
		return nil, nil, errors.Newf(errors.ErrCodeEmptySeries,
			"series of %d bars is too short for a %d day lookback", len(bars), b.config.ConsecutiveDays)
	}

	values := make([]performance.ValuePoint, 0, scanEnd)

	for i := 0; i < scanEnd; i++ {
		bar := bars[i]

		if i > 0 {
			state = state.Advance(bars[i-1].Close, bar.Close)

			signal, err := strategy.Decide(state, b.config.ConsecutiveDays, policy, bars, i)
			if err != nil {
				return nil, nil, err
			}

			portfolio.Apply(signal, bar.Close, bar.Date)
		}

		value, _ := portfolio.ValueAt(bar.Close).Float64()
		values = append(values, performance.ValuePoint{Date: bar.Date, Value: value})
	}

	return portfolio, values, nil
}
