package costs

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxBracket is one row of a progressive income tax table: income above
// Threshold is taxed at Rate until the next bracket begins.
type TaxBracket struct {
	Threshold decimal.Decimal
	Rate      float64
}

// TaxPolicy is a market's capital gains tax treatment: a progressive bracket
// table plus a long-term discount applied once a holding crosses
// LongTermDays (inclusive).
type TaxPolicy struct {
	Brackets         []TaxBracket
	LongTermDays     int     // holding days at or beyond which the discount applies
	LongTermDiscount float64 // fraction of the gain excluded from taxable income
}

// MarginalRate returns the marginal tax rate for the given annual income.
func (p TaxPolicy) MarginalRate(annualIncome decimal.Decimal) float64 {
	brackets := make([]TaxBracket, len(p.Brackets))
	copy(brackets, p.Brackets)
	sort.Slice(brackets, func(i, j int) bool {
		return brackets[i].Threshold.LessThan(brackets[j].Threshold)
	})

	rate := 0.0
	for _, b := range brackets {
		if annualIncome.GreaterThanOrEqual(b.Threshold) {
			rate = b.Rate
		}
	}
	return rate
}

// Tax returns the tax owed on a realized gain. Losses owe no tax and produce
// no credit: there is no loss offset or carryforward in this model. Holdings
// at exactly LongTermDays qualify for the long-term discount.
func (p TaxPolicy) Tax(grossGain decimal.Decimal, holdingDays int, annualIncome decimal.Decimal) decimal.Decimal {
	if !grossGain.IsPositive() {
		return decimal.Zero
	}

	taxable := grossGain
	if p.LongTermDays > 0 && holdingDays >= p.LongTermDays {
		taxable = grossGain.Mul(decimal.NewFromFloat(1 - p.LongTermDiscount))
	}

	return taxable.Mul(decimal.NewFromFloat(p.MarginalRate(annualIncome)))
}
