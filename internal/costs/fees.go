// Package costs implements the financial cost model: brokerage and exchange
// fees, capital gains tax, and the hurdle rate that gates BUY decisions.
package costs

import (
	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// FeeProfile is a named brokerage fee structure. Two families are supported:
//
//   - percentage: brokerage and clearing are a percentage of trade value,
//     plus a fixed settlement fee per trade (ASX-style CHESS fees)
//   - min-flat: brokerage is the greater of a flat minimum and a percentage
//     of trade value (discount-broker style)
type FeeProfile struct {
	Name          string
	BrokerageRate decimal.Decimal // fraction of trade value
	BrokerageMin  decimal.Decimal // flat floor; zero disables the min-flat rule
	ClearingRate  decimal.Decimal // fraction of trade value
	SettlementFee decimal.Decimal // fixed amount per trade
}

// PercentageProfile builds a percentage+clearing+fixed-settlement profile.
func PercentageProfile(name string, brokerageRate, clearingRate, settlementFee decimal.Decimal) FeeProfile {
	return FeeProfile{
		Name:          name,
		BrokerageRate: brokerageRate,
		ClearingRate:  clearingRate,
		SettlementFee: settlementFee,
	}
}

// MinFlatProfile builds a "flat minimum or percentage, whichever is greater"
// profile.
func MinFlatProfile(name string, minimum, rate decimal.Decimal) FeeProfile {
	return FeeProfile{
		Name:          name,
		BrokerageRate: rate,
		BrokerageMin:  minimum,
	}
}

// Compute returns the fee breakdown for one side of a trade. A zero trade
// value costs nothing, including under flat-minimum profiles.
func (p FeeProfile) Compute(tradeValue decimal.Decimal) models.TradeFees {
	if !tradeValue.IsPositive() {
		return models.TradeFees{}
	}

	brokerage := tradeValue.Mul(p.BrokerageRate)
	if p.BrokerageMin.IsPositive() && brokerage.LessThan(p.BrokerageMin) {
		brokerage = p.BrokerageMin
	}

	return models.TradeFees{
		Brokerage:  brokerage,
		Clearing:   tradeValue.Mul(p.ClearingRate),
		Settlement: p.SettlementFee,
	}
}

// EstimatedRate returns the percentage-of-value fee estimate used for
// position sizing and the hurdle rate. Fixed components are excluded: they
// vanish relative to any realistic trade value and sizing only needs a
// conservative per-unit margin.
func (p FeeProfile) EstimatedRate() float64 {
	rate, _ := p.BrokerageRate.Add(p.ClearingRate).Float64()
	return rate
}

// RoundTripRate estimates the combined entry+exit percentage cost, used when
// deriving the hurdle rate.
func (p FeeProfile) RoundTripRate() float64 {
	return 2 * p.EstimatedRate()
}
