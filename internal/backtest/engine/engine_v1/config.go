package engine

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/streaklab/streakback/internal/strategy"
	"github.com/streaklab/streakback/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultBenchmarkSymbol is the passive comparison index used when the
// config does not name one. SPY tracks the S&P 500.
const DefaultBenchmarkSymbol = "SPY"

// DefaultLookbackYears is the window length when no date range is given.
const DefaultLookbackYears = 5

type PolicyKind string

const (
	PolicyKindFixed  PolicyKind = "fixed"
	PolicyKindScaled PolicyKind = "scaled"
)

// TradeSizeConfig selects and parameterizes the size policy.
type TradeSizeConfig struct {
	Policy PolicyKind `yaml:"policy" json:"policy" validate:"required,oneof=fixed scaled"`
	// Shares is the constant trade size for the fixed policy.
	Shares int64 `yaml:"shares,omitempty" json:"shares,omitempty"`
	// SmallShares and LargeShares are the scaled policy trade sizes.
	SmallShares int64 `yaml:"small_shares,omitempty" json:"small_shares,omitempty"`
	LargeShares int64 `yaml:"large_shares,omitempty" json:"large_shares,omitempty"`
	// MovementThresholdPct separates small from large trades. Defaults to 5.0.
	MovementThresholdPct float64 `yaml:"movement_threshold_pct,omitempty" json:"movement_threshold_pct,omitempty"`
}

// BacktestConfig holds everything one backtest run needs.
type BacktestConfig struct {
	Symbol            string          `yaml:"symbol" json:"symbol" validate:"required"`
	BenchmarkSymbol   string          `yaml:"benchmark_symbol,omitempty" json:"benchmark_symbol,omitempty"`
	InitialInvestment float64         `yaml:"initial_investment" json:"initial_investment" validate:"required,gt=0"`
	ConsecutiveDays   int             `yaml:"consecutive_days" json:"consecutive_days" validate:"required,gt=0"`
	TradeSize         TradeSizeConfig `yaml:"trade_size" json:"trade_size"`
	StartTime         optional.Option[time.Time] `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime           optional.Option[time.Time] `yaml:"end_time,omitempty" json:"end_time,omitempty"`
}

// ParseConfig parses a yaml document into a validated BacktestConfig.
func ParseConfig(content string) (BacktestConfig, error) {
	var config BacktestConfig

	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return BacktestConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return BacktestConfig{}, err
	}

	return config, nil
}

// Validate checks structural and policy-specific constraints, surfacing
// every violation as a typed configuration error.
func (c BacktestConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	switch c.TradeSize.Policy {
	case PolicyKindFixed:
		if c.TradeSize.Shares <= 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "fixed policy requires a positive share count")
		}
	case PolicyKindScaled:
		if c.TradeSize.SmallShares <= 0 || c.TradeSize.LargeShares <= 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "scaled policy requires positive small and large share counts")
		}

		if c.TradeSize.MovementThresholdPct < 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "movement threshold must not be negative")
		}
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.StartTime.Unwrap().After(c.EndTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "start %s is after end %s",
			c.StartTime.Unwrap().Format("2006-01-02"), c.EndTime.Unwrap().Format("2006-01-02"))
	}

	return nil
}

// SizePolicy builds the strategy policy described by the trade size config.
func (c BacktestConfig) SizePolicy() strategy.SizePolicy {
	if c.TradeSize.Policy == PolicyKindScaled {
		return strategy.ScaledPolicy{
			SmallShares:          c.TradeSize.SmallShares,
			LargeShares:          c.TradeSize.LargeShares,
			MovementThresholdPct: c.TradeSize.MovementThresholdPct,
		}
	}

	return strategy.FixedPolicy{Shares: c.TradeSize.Shares}
}

// Benchmark returns the configured benchmark symbol or the default.
func (c BacktestConfig) Benchmark() string {
	if c.BenchmarkSymbol == "" {
		return DefaultBenchmarkSymbol
	}

	return c.BenchmarkSymbol
}

// ResolvedRange returns the backtest window. A missing end defaults to now;
// a missing start defaults to the lookback years before the resolved end.
func (c BacktestConfig) ResolvedRange(now time.Time) (time.Time, time.Time) {
	end := now
	if c.EndTime.IsSome() {
		end = c.EndTime.Unwrap()
	}

	start := end.AddDate(-DefaultLookbackYears, 0, 0)
	if c.StartTime.IsSome() {
		start = c.StartTime.Unwrap()
	}

	return start, end
}
