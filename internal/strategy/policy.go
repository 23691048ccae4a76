package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
)

// DefaultMovementThresholdPct is the cutoff between small and large trades
// for the scaled policy when no threshold is configured.
const DefaultMovementThresholdPct = 5.0

// SizePolicy decides how many shares a qualifying streak signal should
// trade. The two variants also differ in how far the signal scan runs over
// the price series, so the scan bound lives here as well.
type SizePolicy interface {
	// Hint returns the requested trade size for a qualifying streak ending
	// at bars[idx], together with the streak's cumulative price movement
	// when the policy measures it. A zero hint defers the signal.
	Hint(bars []types.PriceBar, idx int, consecutiveDays int) (int64, optional.Option[float64], error)
	// ScanEnd returns the exclusive upper bound of the signal scan over a
	// series of n bars.
	ScanEnd(n int, consecutiveDays int) int
	// ReportsSecurityReturn reports whether backtests under this policy
	// include the security's own buy-and-hold return in the report.
	ReportsSecurityReturn() bool
}

// FixedPolicy trades a constant number of shares regardless of movement
// magnitude. The signal scan covers every bar of the series.
type FixedPolicy struct {
	Shares int64
}

func (p FixedPolicy) Hint(_ []types.PriceBar, _ int, _ int) (int64, optional.Option[float64], error) {
	return p.Shares, optional.None[float64](), nil
}

func (p FixedPolicy) ScanEnd(n int, _ int) int {
	return n
}

func (p FixedPolicy) ReportsSecurityReturn() bool {
	return false
}

// ScaledPolicy trades LargeShares when the streak's cumulative price
// movement meets the threshold and SmallShares otherwise.
//
// The signal scan stops consecutiveDays bars before the end of the series,
// unlike FixedPolicy which scans every bar.
type ScaledPolicy struct {
	SmallShares          int64
	LargeShares          int64
	MovementThresholdPct float64
}

func (p ScaledPolicy) Hint(bars []types.PriceBar, idx int, consecutiveDays int) (int64, optional.Option[float64], error) {
	start := idx - consecutiveDays + 1
	if start < 0 {
		// Not enough history to measure the streak; defer the signal.
		// Only possible within the first consecutiveDays bars.
		return 0, optional.None[float64](), nil
	}

	startPrice := bars[start].Close
	if startPrice == 0 {
		return 0, optional.None[float64](), errors.Newf(errors.ErrCodeComputationFailed,
			"zero price at streak start %s", bars[start].Date.Format("2006-01-02"))
	}

	movementPct := (bars[idx].Close - startPrice) / startPrice * 100

	threshold := p.MovementThresholdPct
	if threshold == 0 {
		threshold = DefaultMovementThresholdPct
	}

	shares := p.SmallShares
	if math.Abs(movementPct) >= threshold {
		shares = p.LargeShares
	}

	return shares, optional.Some(movementPct), nil
}

func (p ScaledPolicy) ScanEnd(n int, consecutiveDays int) int {
	end := n - consecutiveDays
	if end < 0 {
		return 0
	}

	return end
}

func (p ScaledPolicy) ReportsSecurityReturn() bool {
	return true
}
