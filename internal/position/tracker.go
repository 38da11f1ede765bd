// Package position implements the single-position lifecycle state machine:
// FLAT -> OPEN -> FLAT, with minimum-hold enforcement and prioritized exit
// triggers.
package position

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// State is the tracker's lifecycle state.
type State string

const (
	Flat State = "FLAT"
	Open State = "OPEN"
)

// Tracker holds at most one open position and enforces the exit rules.
// It never touches cash or fee accounting; the engine owns those.
type Tracker struct {
	pos *models.Position
}

// NewTracker creates a tracker in the FLAT state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns FLAT or OPEN.
func (t *Tracker) State() State {
	if t.pos == nil {
		return Flat
	}
	return Open
}

// Position returns the open position, or nil when FLAT.
func (t *Tracker) Position() *models.Position {
	return t.pos
}

// EntryParams describes a prospective entry.
type EntryParams struct {
	Date          time.Time
	Index         int
	Price         decimal.Decimal
	AvailableCash decimal.Decimal

	// EstimatedFeeRate reserves headroom for entry fees when sizing:
	// quantity = floor(cash / (price * (1 + rate))).
	EstimatedFeeRate float64

	MinHoldUntil  time.Time
	StopLossPct   float64
	TakeProfitPct float64 // zero disables the take-profit trigger
}

// Open transitions FLAT -> OPEN. The quantity is the largest whole number of
// shares the available settled cash can carry including estimated fees. A
// quantity of zero means cash cannot cover a single share; no position is
// opened and (nil, nil) is returned so the engine treats the day as HOLD.
func (t *Tracker) Open(p EntryParams) (*models.Position, error) {
	if t.pos != nil {
		return nil, errors.ErrPositionOpen
	}
	if !p.Price.IsPositive() {
		return nil, errors.NewDataGapError("", p.Date, "price", nil)
	}

	perShare := p.Price.Mul(decimal.NewFromFloat(1 + p.EstimatedFeeRate))
	quantity := p.AvailableCash.Div(perShare).IntPart()
	if quantity <= 0 {
		return nil, nil
	}

	pos := &models.Position{
		EntryDate:     p.Date,
		EntryIndex:    p.Index,
		EntryPrice:    p.Price,
		Quantity:      quantity,
		MinHoldUntil:  p.MinHoldUntil,
		StopLossPrice: p.Price.Mul(decimal.NewFromFloat(1 - p.StopLossPct)),
	}
	if p.TakeProfitPct > 0 {
		pos.TakeProfitPrice = p.Price.Mul(decimal.NewFromFloat(1 + p.TakeProfitPct))
	}

	t.pos = pos
	return pos, nil
}

// Exit describes a triggered position close.
type Exit struct {
	Price  decimal.Decimal
	Reason models.ExitReason
}

// EvaluateExit applies the daily exit checks in priority order:
//
//  1. stop-loss, including gap-down opens (always active, overriding the
//     minimum hold: capital preservation beats the hold commitment)
//  2. take-profit (only once the minimum hold has passed)
//  3. model-driven SELL (only once the minimum hold has passed)
//  4. period-end forced liquidation on the final bar
//
// A gap-down open below the stop price exits at the actual open, not the
// theoretical stop, capturing realistic slippage.
func (t *Tracker) EvaluateExit(bar models.PriceBar, decision models.Direction, finalBar bool) (Exit, bool) {
	if t.pos == nil {
		return Exit{}, false
	}
	pos := t.pos

	if exit, ok := t.checkStopLoss(bar); ok {
		return exit, true
	}

	pastMinHold := !bar.Date.Before(pos.MinHoldUntil)
	if pastMinHold {
		if pos.HasTakeProfit() && bar.IntradayHigh().GreaterThanOrEqual(pos.TakeProfitPrice) {
			return Exit{Price: pos.TakeProfitPrice, Reason: models.ExitTakeProfit}, true
		}
		if decision == models.Sell {
			return Exit{Price: bar.Close, Reason: models.ExitModel}, true
		}
	}

	if finalBar {
		return Exit{Price: bar.Close, Reason: models.ExitPeriodEnd}, true
	}

	return Exit{}, false
}

func (t *Tracker) checkStopLoss(bar models.PriceBar) (Exit, bool) {
	stop := t.pos.StopLossPrice

	if bar.HasOpen() && bar.Open.LessThanOrEqual(stop) {
		return Exit{Price: bar.Open, Reason: models.ExitGapStopLoss}, true
	}

	if bar.HasLow() {
		if bar.Low.LessThanOrEqual(stop) {
			return Exit{Price: stop, Reason: models.ExitStopLoss}, true
		}
		return Exit{}, false
	}

	// Close-only data: a close through the stop is all we can observe. A
	// close strictly below the stop behaves like a gap (the fill happens at
	// the worse, observed price).
	if bar.Close.LessThan(stop) {
		return Exit{Price: bar.Close, Reason: models.ExitGapStopLoss}, true
	}
	if bar.Close.Equal(stop) {
		return Exit{Price: stop, Reason: models.ExitStopLoss}, true
	}
	return Exit{}, false
}

// Close transitions OPEN -> FLAT and returns the position that was held.
func (t *Tracker) Close() (*models.Position, error) {
	if t.pos == nil {
		return nil, errors.ErrNoPosition
	}
	pos := t.pos
	t.pos = nil
	return pos, nil
}
