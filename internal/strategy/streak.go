// Package strategy implements the momentum-reversal trading rule: a run of
// consecutive up days eventually triggers a sell, a run of consecutive down
// days a buy.
package strategy

// StreakState tracks the length of the current run of up or down days.
// At most one counter is nonzero after the first comparison; both are zero
// on the first bar because there is no prior price to compare.
type StreakState struct {
	ConsecutiveUpDays   int
	ConsecutiveDownDays int
}

// Advance returns the streak state after comparing the current close to the
// previous close. A strictly higher close extends the up run; anything else,
// including a flat close, extends the down run. Pure function, no side
// effects.
func (s StreakState) Advance(prevClose, currClose float64) StreakState {
	if currClose > prevClose {
		return StreakState{
			ConsecutiveUpDays:   s.ConsecutiveUpDays + 1,
			ConsecutiveDownDays: 0,
		}
	}

	return StreakState{
		ConsecutiveUpDays:   0,
		ConsecutiveDownDays: s.ConsecutiveDownDays + 1,
	}
}
