package config

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/costs"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
)

// Preset bundles one market's trading rules. Markets differ only in these
// values; the engine itself never branches on a market name.
type Preset struct {
	Name              string
	FeeProfile        costs.FeeProfile
	TaxPolicy         costs.TaxPolicy
	SettlementLagDays int
	TickerSuffix      string
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("bad preset constant: " + s)
	}
	return d
}

var presets = map[string]Preset{
	"ASX": {
		Name: "ASX",
		// Brokerage 0.12%, CHESS clearing 0.00225%, $1.50 settlement.
		FeeProfile: costs.PercentageProfile("asx-chess", dec("0.0012"), dec("0.0000225"), dec("1.50")),
		TaxPolicy: costs.TaxPolicy{
			Brackets: []costs.TaxBracket{
				{Threshold: dec("0"), Rate: 0},
				{Threshold: dec("18200"), Rate: 0.19},
				{Threshold: dec("45000"), Rate: 0.325},
				{Threshold: dec("120000"), Rate: 0.37},
				{Threshold: dec("180000"), Rate: 0.45},
			},
			LongTermDays:     365,
			LongTermDiscount: 0.5, // CGT discount
		},
		SettlementLagDays: 2,
		TickerSuffix:      ".AX",
	},
	"USA": {
		Name:       "USA",
		FeeProfile: costs.MinFlatProfile("us-discount", dec("4.95"), dec("0.0005")),
		TaxPolicy: costs.TaxPolicy{
			Brackets: []costs.TaxBracket{
				{Threshold: dec("0"), Rate: 0.10},
				{Threshold: dec("11600"), Rate: 0.12},
				{Threshold: dec("47150"), Rate: 0.22},
				{Threshold: dec("100525"), Rate: 0.24},
				{Threshold: dec("191950"), Rate: 0.32},
				{Threshold: dec("243725"), Rate: 0.35},
			},
			LongTermDays:     365,
			LongTermDiscount: 0.4,
		},
		SettlementLagDays: 1,
	},
	"TWN": {
		Name: "TWN",
		// Brokerage 0.1425%; the 0.3% securities transaction levy is folded
		// into the clearing component.
		FeeProfile: costs.PercentageProfile("twse", dec("0.001425"), dec("0.0015"), dec("0")),
		TaxPolicy: costs.TaxPolicy{
			// Capital gains on listed shares are exempt; the levy above is
			// the effective cost.
			Brackets: []costs.TaxBracket{{Threshold: dec("0"), Rate: 0}},
		},
		SettlementLagDays: 2,
		TickerSuffix:      ".TW",
	},
}

// MarketPreset returns the preset for a market name (case-insensitive).
func MarketPreset(name string) (Preset, error) {
	preset, ok := presets[strings.ToUpper(name)]
	if !ok {
		return Preset{}, errors.Wrapf(errors.ErrUnknownMarket, "market %q", name)
	}
	return preset, nil
}

// Markets lists the available market preset names.
func Markets() []string {
	return []string{"ASX", "TWN", "USA"}
}

// CostProfile resolves a named fee structure independently of any market,
// for runs that override the preset's fees.
func CostProfile(name string) (costs.FeeProfile, error) {
	switch strings.ToLower(name) {
	case "asx-chess":
		return presets["ASX"].FeeProfile, nil
	case "us-discount":
		return presets["USA"].FeeProfile, nil
	case "twse":
		return presets["TWN"].FeeProfile, nil
	case "zero":
		return costs.PercentageProfile("zero", decimal.Zero, decimal.Zero, decimal.Zero), nil
	default:
		return costs.FeeProfile{}, errors.Wrapf(errors.ErrUnknownProfile, "cost profile %q", name)
	}
}
