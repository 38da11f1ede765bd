package costs

import (
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
)

// MinimumRequiredReturn computes the hurdle rate that a predicted return must
// strictly exceed before a BUY is acted on. The desired net risk buffer is
// grossed up by the marginal tax rate so the after-tax buffer is preserved:
//
//	hurdle = feesPct + riskBufferPct / (1 - marginalTaxRate)
//
// Tax rates are fractions in [0, 1); a rate at or above 1 is a ConfigError.
func MinimumRequiredReturn(feesPct, riskBufferPct, marginalTaxRate float64) (float64, error) {
	if marginalTaxRate < 0 || marginalTaxRate >= 1 {
		return 0, errors.NewConfigError("marginal_tax_rate", marginalTaxRate, "must be a fraction in [0, 1)")
	}
	if feesPct < 0 {
		return 0, errors.NewConfigError("fees_pct", feesPct, "must be non-negative")
	}
	if riskBufferPct < 0 {
		return 0, errors.NewConfigError("risk_buffer_pct", riskBufferPct, "must be non-negative")
	}

	return feesPct + riskBufferPct/(1-marginalTaxRate), nil
}
