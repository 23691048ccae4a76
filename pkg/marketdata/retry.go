package marketdata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/streaklab/streakback/internal/logger"
	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// RetryProvider decorates another provider with bounded retries and
// doubling backoff. Configuration errors are not retried.
type RetryProvider struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
	log         *logger.Logger
}

// NewRetryProvider wraps inner with maxAttempts tries starting at baseDelay
// between attempts. Non-positive arguments fall back to the defaults.
func NewRetryProvider(inner Provider, maxAttempts int, baseDelay time.Duration, log *logger.Logger) *RetryProvider {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	return &RetryProvider{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
	}
}

// FetchDailyBars implements Provider. It returns the first successful
// result, or wraps the last error once all attempts are spent. The delay
// respects context cancellation.
func (p *RetryProvider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PriceBar, error) {
	var lastErr error

	delay := p.baseDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		bars, err := p.inner.FetchDailyBars(ctx, symbol, start, end)
		if err == nil {
			return bars, nil
		}

		// Invalid input will not get better on retry.
		if errors.IsConfigError(err) {
			return nil, err
		}

		lastErr = err

		if attempt < p.maxAttempts {
			if p.log != nil {
				p.log.Warn("fetch failed, retrying",
					zap.String("symbol", symbol),
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
		}
	}

	return nil, errors.Wrapf(errors.ErrCodeFetchExhausted, lastErr,
		"giving up on %s after %d attempts", symbol, p.maxAttempts)
}
