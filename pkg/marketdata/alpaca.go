package marketdata

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
)

// AlpacaProvider fetches daily bars from the Alpaca market data API.
type AlpacaProvider struct {
	client *marketdata.Client
}

// NewAlpacaProvider creates a provider using the given API credentials.
func NewAlpacaProvider(apiKey, apiSecret, baseURL string) (*AlpacaProvider, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "alpaca api key and secret are required")
	}

	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}

	return &AlpacaProvider{client: marketdata.NewClient(opts)}, nil
}

// FetchDailyBars implements Provider. An unknown or delisted symbol shows
// up as an empty bar list, which is mapped to a typed data error.
func (p *AlpacaProvider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PriceBar, error) {
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol must not be empty")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	alpacaBars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch bars for %s", symbol)
	}

	if len(alpacaBars) == 0 {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no data available for %s", symbol)
	}

	bars := make([]types.PriceBar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, types.PriceBar{
			Date:  types.Day(ab.Timestamp),
			Close: ab.Close,
		})
	}

	return bars, nil
}
