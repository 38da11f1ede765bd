package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitGapStopLoss ExitReason = "GAP_STOP_LOSS"
	ExitTakeProfit  ExitReason = "TAKE_PROFIT"
	ExitModel       ExitReason = "MODEL_EXIT"
	ExitPeriodEnd   ExitReason = "PERIOD_END"
)

// Position is a single simulated holding. At most one Position is open per
// simulated account at a time.
type Position struct {
	EntryDate  time.Time
	EntryIndex int
	EntryPrice decimal.Decimal
	Quantity   int64

	// CostBasis is quantity*entry price plus entry-side fees; the cash that
	// left the account to open the position.
	CostBasis decimal.Decimal
	EntryFees TradeFees

	// MinHoldUntil is the first date on which model-driven and take-profit
	// exits are permitted. Stop-loss exits ignore it.
	MinHoldUntil time.Time

	StopLossPrice   decimal.Decimal
	TakeProfitPrice decimal.Decimal // zero when no take-profit is configured
}

// HasTakeProfit reports whether a take-profit trigger is configured.
func (p *Position) HasTakeProfit() bool {
	return p.TakeProfitPrice.IsPositive()
}

// MarketValue returns the mark-to-market value of the position at the given
// price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Quantity))
}

// TradeFees is the fee breakdown for one side of a trade.
type TradeFees struct {
	Brokerage  decimal.Decimal `json:"brokerage"`
	Clearing   decimal.Decimal `json:"clearing"`
	Settlement decimal.Decimal `json:"settlement"`
}

// Total returns the sum of all fee components.
func (f TradeFees) Total() decimal.Decimal {
	return f.Brokerage.Add(f.Clearing).Add(f.Settlement)
}

// Add returns the component-wise sum of two fee breakdowns.
func (f TradeFees) Add(other TradeFees) TradeFees {
	return TradeFees{
		Brokerage:  f.Brokerage.Add(other.Brokerage),
		Clearing:   f.Clearing.Add(other.Clearing),
		Settlement: f.Settlement.Add(other.Settlement),
	}
}

// ClosedTrade is an immutable ledger record, created exactly once per
// position close. Fee fields combine the entry and exit legs.
type ClosedTrade struct {
	EntryDate     time.Time       `json:"entry_date"`
	ExitDate      time.Time       `json:"exit_date"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	ExitPrice     decimal.Decimal `json:"exit_price"`
	Quantity      int64           `json:"quantity"`
	GrossProceeds decimal.Decimal `json:"gross_proceeds"`
	BrokerageFee  decimal.Decimal `json:"brokerage_fee"`
	ClearingFee   decimal.Decimal `json:"clearing_fee"`
	SettlementFee decimal.Decimal `json:"settlement_fee"`
	TaxPaid       decimal.Decimal `json:"tax_paid"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ExitReason    ExitReason      `json:"exit_reason"`
	HoldingDays   int             `json:"holding_days"`
}

// EquityPoint is one sample of the equity curve: total account value
// (spendable cash + pending settlement + marked-to-market position) at the
// close of one simulated day.
type EquityPoint struct {
	Date   time.Time       `json:"date"`
	Equity decimal.Decimal `json:"equity"`
}
