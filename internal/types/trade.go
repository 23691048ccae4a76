package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// TradeRecord is one executed fill. Records are appended in chronological
// order by the portfolio and are never modified afterwards.
type TradeRecord struct {
	Date   time.Time   `csv:"date" json:"date" yaml:"date"`
	Action TradeAction `csv:"action" json:"action" yaml:"action"`
	Shares int64       `csv:"shares" json:"shares" yaml:"shares"`
	Price  float64     `csv:"price" json:"price" yaml:"price"`
	// MovementPct is the cumulative streak price movement that sized the
	// trade. Only present for the scaled size policy.
	MovementPct optional.Option[float64] `csv:"movement_pct" json:"movement_pct,omitempty" yaml:"movement_pct,omitempty"`
}
