package types

import (
	"github.com/moznion/go-optional"
)

type SignalType string

const (
	SignalTypeBuy  SignalType = "BUY"
	SignalTypeSell SignalType = "SELL"
	SignalTypeHold SignalType = "HOLD"
)

// Signal is the decision produced for a single bar. QuantityHint is the
// requested trade size before the portfolio caps it by affordability or
// holdings; it is zero for hold signals.
type Signal struct {
	Type         SignalType `json:"type" yaml:"type"`
	QuantityHint int64      `json:"quantity_hint" yaml:"quantity_hint"`
	// MovementPct is set by the scaled size policy to the cumulative price
	// movement over the qualifying streak.
	MovementPct optional.Option[float64] `json:"movement_pct,omitempty" yaml:"movement_pct,omitempty"`
}

// Hold is the no-action signal.
func Hold() Signal {
	return Signal{Type: SignalTypeHold, QuantityHint: 0, MovementPct: optional.None[float64]()}
}
