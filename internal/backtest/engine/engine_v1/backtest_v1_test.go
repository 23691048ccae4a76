package engine

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// stubProvider serves canned bar series keyed by symbol.
type stubProvider struct {
	series map[string][]types.PriceBar
	errs   map[string]error
	calls  int
}

func (p *stubProvider) FetchDailyBars(_ context.Context, symbol string, _, _ time.Time) ([]types.PriceBar, error) {
	p.calls++

	if err, ok := p.errs[symbol]; ok {
		return nil, err
	}

	bars, ok := p.series[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no data available for %s", symbol)
	}

	return bars, nil
}

func tradingDays(closes ...float64) []types.PriceBar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.PriceBar, len(closes))

	for i, c := range closes {
		bars[i] = types.PriceBar{Date: base.AddDate(0, 0, i), Close: c}
	}

	return bars
}

type BacktestEngineV1TestSuite struct {
	suite.Suite
	engine *BacktestEngineV1
}

func TestBacktestEngineV1TestSuite(t *testing.T) {
	suite.Run(t, new(BacktestEngineV1TestSuite))
}

func (suite *BacktestEngineV1TestSuite) SetupTest() {
	suite.engine = NewBacktestEngineV1().(*BacktestEngineV1)
	suite.engine.config = fixedConfig()
	suite.engine.config.StartTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	suite.engine.config.EndTime = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
}

func (suite *BacktestEngineV1TestSuite) provideSeries(symbol []float64, benchmark []float64) {
	suite.Require().NoError(suite.engine.SetDataProvider(&stubProvider{
		series: map[string][]types.PriceBar{
			"AAPL":                 tradingDays(symbol...),
			DefaultBenchmarkSymbol: tradingDays(benchmark...),
		},
	}))
}

// The reference scenario: threshold 3, fixed 10 shares, prices
// [100,99,98,97,105]. The third consecutive down day triggers a buy of 10
// at 97; the final bar at 105 values the portfolio at 10080.
func (suite *BacktestEngineV1TestSuite) TestFixedPolicyReferenceScenario() {
	suite.provideSeries(
		[]float64{100, 99, 98, 97, 105},
		[]float64{400, 401, 402, 403, 404},
	)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Equal(10000.0, report.InitialInvestment)
	suite.Equal(10080.0, report.FinalValue)
	suite.InDelta(0.80, report.TotalReturnPct, 1e-9)
	suite.Equal(1, report.TradeCount)

	suite.Require().Len(report.Trades, 1)
	trade := report.Trades[0]
	suite.Equal(types.TradeActionBuy, trade.Action)
	suite.Equal(int64(10), trade.Shares)
	suite.Equal(97.0, trade.Price)

	// (404-400)/400*100 = 1%
	suite.InDelta(1.0, report.BenchmarkReturnPct, 1e-9)
	suite.True(report.SecurityReturnPct.IsNone())
	suite.Len(report.DailySeries, 5)
	suite.NotEmpty(report.ID)
}

func (suite *BacktestEngineV1TestSuite) TestUpStreakSellsOnlyWhenHoldingShares() {
	// Three consecutive up days with nothing held: no trade may fill.
	suite.provideSeries(
		[]float64{100, 101, 102, 103},
		[]float64{400, 401, 402, 403},
	)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Zero(report.TradeCount)
	suite.Empty(report.Trades)
	suite.Equal(10000.0, report.FinalValue)
}

func (suite *BacktestEngineV1TestSuite) TestBuyThenSellCycle() {
	// Down streak buys at 97, the following up streak sells at 103.
	suite.provideSeries(
		[]float64{100, 99, 98, 97, 99, 101, 103, 102},
		[]float64{400, 401, 402, 403, 404, 405, 406, 407},
	)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Require().Len(report.Trades, 2)
	suite.Equal(types.TradeActionBuy, report.Trades[0].Action)
	suite.Equal(97.0, report.Trades[0].Price)
	suite.Equal(types.TradeActionSell, report.Trades[1].Action)
	suite.Equal(103.0, report.Trades[1].Price)

	// 10000 - 970 + 1030 = 10060, flat through the last bar.
	suite.Equal(10060.0, report.FinalValue)
}

func (suite *BacktestEngineV1TestSuite) TestScaledPolicyStopsBeforeSeriesEnd() {
	suite.engine.config.TradeSize = TradeSizeConfig{
		Policy:               PolicyKindScaled,
		SmallShares:          5,
		LargeShares:          20,
		MovementThresholdPct: 5.0,
	}

	// The down streak reaches the threshold at index 3 (price 92, -8% from
	// 100): a large buy. Bars beyond index 4 are outside the scaled scan
	// (8 bars - 3 lookback days = bound 5).
	suite.provideSeries(
		[]float64{100, 100, 95, 92, 94, 101, 115, 130},
		[]float64{400, 401, 402, 403, 404, 405, 406, 407},
	)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Require().Len(report.Trades, 1)
	trade := report.Trades[0]
	suite.Equal(types.TradeActionBuy, trade.Action)
	suite.Equal(int64(20), trade.Shares)
	suite.Equal(92.0, trade.Price)
	suite.Require().True(trade.MovementPct.IsSome())
	suite.InDelta(-8.0, trade.MovementPct.Unwrap(), 1e-9)

	// Last processed bar is index 4 at 94: 10000 - 20*92 + 20*94 = 10040.
	suite.Equal(10040.0, report.FinalValue)
	suite.Len(report.DailySeries, 5)

	// Variant two reports the security's own buy-and-hold return, over the
	// full series: (130-100)/100*100 = 30%.
	suite.Require().True(report.SecurityReturnPct.IsSome())
	suite.InDelta(30.0, report.SecurityReturnPct.Unwrap(), 1e-9)
}

func (suite *BacktestEngineV1TestSuite) TestScaledPolicySmallTrade() {
	suite.engine.config.TradeSize = TradeSizeConfig{
		Policy:               PolicyKindScaled,
		SmallShares:          5,
		LargeShares:          20,
		MovementThresholdPct: 5.0,
	}

	// Down streak at index 3: movement (98-100)/100 = -2%, under the
	// threshold, so the small size trades.
	suite.provideSeries(
		[]float64{100, 100, 99, 98, 99, 100, 101, 102},
		[]float64{400, 401, 402, 403, 404, 405, 406, 407},
	)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Require().NotEmpty(report.Trades)
	suite.Equal(int64(5), report.Trades[0].Shares)
}

func (suite *BacktestEngineV1TestSuite) TestEmptySeriesFails() {
	suite.Require().NoError(suite.engine.SetDataProvider(&stubProvider{
		series: map[string][]types.PriceBar{
			DefaultBenchmarkSymbol: tradingDays(400, 401),
		},
	}))

	_, err := suite.engine.Run(context.Background())
	suite.Require().Error(err)
	suite.True(errors.IsDataError(err))
}

func (suite *BacktestEngineV1TestSuite) TestBenchmarkUnavailableFails() {
	suite.Require().NoError(suite.engine.SetDataProvider(&stubProvider{
		series: map[string][]types.PriceBar{
			"AAPL": tradingDays(100, 101),
		},
		errs: map[string]error{
			DefaultBenchmarkSymbol: errors.New(errors.ErrCodeDataUnavailable, "benchmark feed down"),
		},
	}))

	_, err := suite.engine.Run(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *BacktestEngineV1TestSuite) TestSingleBarIsHoldOnlyRun() {
	suite.provideSeries([]float64{100}, []float64{400})

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Zero(report.TradeCount)
	suite.Equal(10000.0, report.FinalValue)
	suite.Len(report.DailySeries, 1)
}

func (suite *BacktestEngineV1TestSuite) TestScaledPolicyShortSeriesFails() {
	suite.engine.config.TradeSize = TradeSizeConfig{
		Policy:      PolicyKindScaled,
		SmallShares: 5,
		LargeShares: 20,
	}
	suite.provideSeries([]float64{100, 101}, []float64{400, 401})

	_, err := suite.engine.Run(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func (suite *BacktestEngineV1TestSuite) TestRunWithoutProviderFails() {
	_, err := suite.engine.Run(context.Background())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestFailed))
}

func (suite *BacktestEngineV1TestSuite) TestLastTradesKeepsTail() {
	// Oscillate so several buys and sells fire: long alternating runs.
	closes := []float64{100}
	for cycle := 0; cycle < 6; cycle++ {
		last := closes[len(closes)-1]
		for d := 1; d <= 3; d++ {
			closes = append(closes, last-float64(d))
		}

		last = closes[len(closes)-1]
		for d := 1; d <= 3; d++ {
			closes = append(closes, last+float64(d))
		}
	}

	benchmark := make([]float64, len(closes))
	for i := range benchmark {
		benchmark[i] = 400 + float64(i)
	}

	suite.provideSeries(closes, benchmark)

	report, err := suite.engine.Run(context.Background())
	suite.Require().NoError(err)

	suite.Require().Greater(report.TradeCount, types.LastTradeCount)
	suite.Len(report.LastTrades, types.LastTradeCount)
	suite.Equal(report.Trades[len(report.Trades)-types.LastTradeCount:], report.LastTrades)
}

func (suite *BacktestEngineV1TestSuite) TestInitializeParsesYaml() {
	engine := NewBacktestEngineV1()

	err := engine.Initialize(`
symbol: MSFT
initial_investment: 5000
consecutive_days: 2
trade_size:
  policy: fixed
  shares: 4
`)
	suite.Require().NoError(err)

	suite.Require().NoError(engine.SetDataProvider(&stubProvider{
		series: map[string][]types.PriceBar{
			"MSFT":                 tradingDays(50, 49, 48, 52),
			DefaultBenchmarkSymbol: tradingDays(400, 401, 402, 403),
		},
	}))

	report, err := engine.Run(context.Background())
	suite.Require().NoError(err)
	suite.Equal("MSFT", report.Symbol)
	suite.Equal(1, report.TradeCount)
}
