package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// Summary are the performance metrics computed once from a finished run's
// ledger and equity curve. Money stays decimal; ratios are float64.
type Summary struct {
	InitialCapital    decimal.Decimal `json:"initial_capital"`
	FinalEquity       decimal.Decimal `json:"final_equity"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	ROI               float64         `json:"roi"`
	AnnualizedReturn  float64         `json:"annualized_return"`
	WinRate           float64         `json:"win_rate"`
	AvgProfitPerTrade decimal.Decimal `json:"avg_profit_per_trade"`
	MaxDrawdown       float64         `json:"max_drawdown"`
	SharpeRatio       float64         `json:"sharpe_ratio"`
	Trades            int             `json:"trades"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
}

func computeSummary(initial, finalEquity decimal.Decimal, ledger []models.ClosedTrade, curve []models.EquityPoint) Summary {
	s := Summary{
		InitialCapital: initial,
		FinalEquity:    finalEquity,
		NetProfit:      finalEquity.Sub(initial),
		Trades:         len(ledger),
	}

	if initial.IsPositive() {
		roi, _ := s.NetProfit.Div(initial).Float64()
		s.ROI = roi
	}

	totalProfit := decimal.Zero
	for _, trade := range ledger {
		totalProfit = totalProfit.Add(trade.NetProfit)
		if trade.NetProfit.IsPositive() {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
		s.AvgProfitPerTrade = totalProfit.Div(decimal.NewFromInt(int64(s.Trades)))
	}

	s.MaxDrawdown = maxDrawdown(curve)
	s.AnnualizedReturn = annualizedReturn(initial, finalEquity, curve)
	s.SharpeRatio = sharpeRatio(curve)
	return s
}

func maxDrawdown(curve []models.EquityPoint) float64 {
	var worst float64
	peak := decimal.Zero
	for _, point := range curve {
		if point.Equity.GreaterThan(peak) {
			peak = point.Equity
		}
		if peak.IsPositive() {
			dd, _ := peak.Sub(point.Equity).Div(peak).Float64()
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func annualizedReturn(initial, finalEquity decimal.Decimal, curve []models.EquityPoint) float64 {
	if len(curve) < 2 || !initial.IsPositive() {
		return 0
	}
	days := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24
	if days <= 0 {
		return 0
	}
	growth, _ := finalEquity.Div(initial).Float64()
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 365/days) - 1
}

// sharpeRatio computes the annualized Sharpe ratio of daily equity returns
// against a zero risk-free rate.
func sharpeRatio(curve []models.EquityPoint) float64 {
	if len(curve) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev, _ := curve[i-1].Equity.Float64()
		cur, _ := curve[i].Equity.Float64()
		if prev == 0 {
			return 0
		}
		returns = append(returns, (cur-prev)/prev)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(252)
}
