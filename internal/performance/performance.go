// Package performance derives the return figures and comparison series
// reported after a backtest. It only guarantees correct, ordered, gap-free
// numbers; rendering them is the consumer's concern.
package performance

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
)

// ValuePoint is a dated portfolio valuation produced during the backtest
// scan.
type ValuePoint struct {
	Date  time.Time
	Value float64
}

// TotalReturnPct is the percentage gain of finalValue over the initial
// investment.
func TotalReturnPct(finalValue, initialInvestment float64) float64 {
	return (finalValue - initialInvestment) / initialInvestment * 100
}

// SeriesReturnPct is the buy-and-hold return over a price series:
// (last - first) / first * 100.
func SeriesReturnPct(bars []types.PriceBar) (float64, error) {
	if len(bars) == 0 {
		return 0, errors.New(errors.ErrCodeEmptySeries, "cannot compute return of an empty series")
	}

	first := bars[0].Close
	if first == 0 {
		return 0, errors.Newf(errors.ErrCodeComputationFailed,
			"zero first price on %s", bars[0].Date.Format("2006-01-02"))
	}

	return (bars[len(bars)-1].Close - first) / first * 100, nil
}

// BuildDailySeries assembles the per-day comparison of strategy, benchmark
// and optionally the raw security. Rows are emitted for dates present in
// every provided series, in chronological order; dates missing from any
// series are dropped. Each percentage is relative to that series' first
// in-window value.
func BuildDailySeries(strategyValues []ValuePoint, benchmark []types.PriceBar, security []types.PriceBar) ([]types.SeriesPoint, error) {
	if len(strategyValues) == 0 || len(benchmark) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "daily series requires strategy and benchmark data")
	}

	strategyBase := strategyValues[0].Value
	if strategyBase == 0 {
		return nil, errors.New(errors.ErrCodeComputationFailed, "zero initial strategy value")
	}

	benchmarkBase := benchmark[0].Close
	if benchmarkBase == 0 {
		return nil, errors.Newf(errors.ErrCodeComputationFailed,
			"zero first benchmark price on %s", benchmark[0].Date.Format("2006-01-02"))
	}

	benchmarkByDay := make(map[time.Time]float64, len(benchmark))
	for _, bar := range benchmark {
		benchmarkByDay[bar.Day()] = bar.Close
	}

	var securityByDay map[time.Time]float64

	var securityBase float64

	if security != nil {
		securityBase = security[0].Close
		if securityBase == 0 {
			return nil, errors.Newf(errors.ErrCodeComputationFailed,
				"zero first security price on %s", security[0].Date.Format("2006-01-02"))
		}

		securityByDay = make(map[time.Time]float64, len(security))
		for _, bar := range security {
			securityByDay[bar.Day()] = bar.Close
		}
	}

	series := make([]types.SeriesPoint, 0, len(strategyValues))

	for _, point := range strategyValues {
		day := types.Day(point.Date)

		benchClose, ok := benchmarkByDay[day]
		if !ok {
			continue
		}

		securityPct := optional.None[float64]()

		if securityByDay != nil {
			securityClose, ok := securityByDay[day]
			if !ok {
				continue
			}

			securityPct = optional.Some((securityClose - securityBase) / securityBase * 100)
		}

		series = append(series, types.SeriesPoint{
			Date:         day,
			StrategyPct:  (point.Value - strategyBase) / strategyBase * 100,
			BenchmarkPct: (benchClose - benchmarkBase) / benchmarkBase * 100,
			SecurityPct:  securityPct,
		})
	}

	return series, nil
}
