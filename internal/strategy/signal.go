package strategy

import (
	"github.com/streaklab/streakback/internal/types"
)

// Decide turns the streak state at bars[idx] into a trade signal. An up run
// of at least consecutiveDays sells, a down run of at least consecutiveDays
// buys, anything shorter holds. The size policy provides the quantity hint;
// a zero hint (scaled policy without enough lookback) downgrades the signal
// to a hold.
func Decide(state StreakState, consecutiveDays int, policy SizePolicy, bars []types.PriceBar, idx int) (types.Signal, error) {
	var action types.SignalType

	switch {
	case state.ConsecutiveUpDays >= consecutiveDays:
		action = types.SignalTypeSell
	case state.ConsecutiveDownDays >= consecutiveDays:
		action = types.SignalTypeBuy
	default:
		return types.Hold(), nil
	}

	hint, movementPct, err := policy.Hint(bars, idx, consecutiveDays)
	if err != nil {
		return types.Hold(), err
	}

	if hint == 0 {
		return types.Hold(), nil
	}

	return types.Signal{
		Type:         action,
		QuantityHint: hint,
		MovementPct:  movementPct,
	}, nil
}
