package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/streaklab/streakback/internal/types"
)

// Portfolio is the cash and share bookkeeping for one backtest run. Buys are
// capped by affordable quantity and sells by held quantity, so cash and
// shares never go negative. Each run gets a fresh Portfolio; state is never
// shared across runs or requests.
type Portfolio struct {
	cash   decimal.Decimal
	shares int64
	trades []types.TradeRecord
}

// NewPortfolio creates a portfolio holding only the initial investment.
func NewPortfolio(initialInvestment float64) *Portfolio {
	return &Portfolio{
		cash:   decimal.NewFromFloat(initialInvestment),
		shares: 0,
		trades: nil,
	}
}

// Apply executes a signal against the current price, mutating cash and
// shares and appending at most one trade record. Signals that cannot fill
// (nothing held to sell, nothing affordable to buy) are silent no-ops.
func (p *Portfolio) Apply(signal types.Signal, price float64, date time.Time) {
	switch signal.Type {
	case types.SignalTypeSell:
		p.sell(signal, price, date)
	case types.SignalTypeBuy:
		p.buy(signal, price, date)
	case types.SignalTypeHold:
	}
}

func (p *Portfolio) sell(signal types.Signal, price float64, date time.Time) {
	qty := min(p.shares, signal.QuantityHint)
	if qty <= 0 {
		return
	}

	proceeds := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty))
	p.cash = p.cash.Add(proceeds)
	p.shares -= qty
	p.trades = append(p.trades, types.TradeRecord{
		Date:        date,
		Action:      types.TradeActionSell,
		Shares:      qty,
		Price:       price,
		MovementPct: signal.MovementPct,
	})
}

func (p *Portfolio) buy(signal types.Signal, price float64, date time.Time) {
	priceDec := decimal.NewFromFloat(price)
	if !priceDec.IsPositive() {
		return
	}

	affordable := p.cash.Div(priceDec).IntPart()

	qty := min(signal.QuantityHint, affordable)
	if qty <= 0 {
		return
	}

	cost := priceDec.Mul(decimal.NewFromInt(qty))
	p.cash = p.cash.Sub(cost)
	p.shares += qty
	p.trades = append(p.trades, types.TradeRecord{
		Date:        date,
		Action:      types.TradeActionBuy,
		Shares:      qty,
		Price:       price,
		MovementPct: signal.MovementPct,
	})
}

// ValueAt returns cash plus shares marked at the given price. Pure query.
func (p *Portfolio) ValueAt(price float64) decimal.Decimal {
	return p.cash.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(p.shares)))
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// Shares returns the current share count.
func (p *Portfolio) Shares() int64 {
	return p.shares
}

// Trades returns the chronological trade records.
func (p *Portfolio) Trades() []types.TradeRecord {
	return p.trades
}
