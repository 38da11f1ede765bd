package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/config"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/consensus"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/costs"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/position"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/predictor"
)

// Result is the full outcome of one backtest run.
type Result struct {
	Ticker      string               `json:"ticker"`
	ModelIDs    []string             `json:"model_ids"`
	Ledger      []models.ClosedTrade `json:"ledger"`
	EquityCurve []models.EquityPoint `json:"equity_curve"`
	Summary     Summary              `json:"summary"`
}

// Run executes one deterministic backtest of the price series with the given
// predictors. Bars must be in ascending date order; bars before the warm-up
// boundary are shown to the predictors but never traded. The engine performs
// no I/O and never logs: callers own both.
func Run(ticker string, bars []models.PriceBar, predictors []predictor.Predictor, cfg *config.Simulation) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(predictors) == 0 {
		return nil, errors.NewConfigError("models", nil, "at least one predictor is required")
	}
	if len(bars) < cfg.WarmUpBars+1 {
		return nil, errors.NewInsufficientHistoryError(ticker, len(bars), cfg.WarmUpBars+1)
	}

	// The hurdle is fixed for the whole run: round-trip fees plus the risk
	// buffer grossed up by the marginal tax rate.
	hurdle, err := costs.MinimumRequiredReturn(
		cfg.FeeProfile.RoundTripRate(), cfg.RiskBufferPct, cfg.MarginalTaxRate())
	if err != nil {
		return nil, err
	}

	voter := consensus.NewVoter(cfg.TieBreakerModelID)
	account := NewAccount(cfg.InitialCapital)
	tracker := position.NewTracker()

	result := &Result{
		Ticker:      ticker,
		EquityCurve: make([]models.EquityPoint, 0, len(bars)-cfg.WarmUpBars),
	}
	for _, p := range predictors {
		result.ModelIDs = append(result.ModelIDs, p.ModelID())
	}

	lastIndex := len(bars) - 1
	for i, bar := range bars {
		if i > 0 && !bar.Date.After(bars[i-1].Date) {
			return nil, errors.NewDataGapError(ticker, bar.Date, "price", fmt.Errorf("bars out of chronological order"))
		}

		if i < cfg.WarmUpBars {
			// Warm-up: prime any stateful predictor with history, discard
			// the outputs, trade nothing.
			for _, p := range predictors {
				p.Predict(bars[: i+1 : i+1])
			}
			continue
		}

		if !bar.Close.IsPositive() {
			return nil, errors.NewDataGapError(ticker, bar.Date, "price", nil)
		}

		signals := make([]models.Signal, 0, len(predictors))
		for _, p := range predictors {
			sig, err := p.Predict(bars[: i+1 : i+1])
			if err != nil {
				return nil, errors.NewDataGapError(ticker, bar.Date, "signal", err)
			}
			signals = append(signals, sig)
		}

		decision, err := decide(voter, signals, bar, len(predictors) > 1)
		if err != nil {
			return nil, err
		}

		account.Release(bar.Date)

		wasOpen := tracker.State() == position.Open
		if wasOpen {
			if exit, ok := tracker.EvaluateExit(bar, decision.Direction, i == lastIndex); ok {
				trade, proceeds, err := closePosition(tracker, exit, bar, cfg)
				if err != nil {
					return nil, err
				}
				result.Ledger = append(result.Ledger, trade)
				settleProceeds(account, proceeds, bars, i, cfg.SettlementLagDays)
			}
		} else if i < lastIndex && decision.Direction == models.Buy && decision.PredictedReturn > hurdle {
			// Entries on the final bar are skipped: the position would be
			// force-liquidated the same day it was opened.
			if err := openPosition(tracker, account, bars, i, cfg); err != nil {
				return nil, err
			}
		}

		equity := account.Total()
		if pos := tracker.Position(); pos != nil {
			equity = equity.Add(pos.MarketValue(bar.Close))
		}
		result.EquityCurve = append(result.EquityCurve, models.EquityPoint{Date: bar.Date, Equity: equity})
	}

	account.Finalize()
	result.Summary = computeSummary(cfg.InitialCapital, account.Spendable(), result.Ledger, result.EquityCurve)
	return result, nil
}

// decide collapses the day's signals into one decision. Single-model runs
// bypass the voter.
func decide(voter *consensus.Voter, signals []models.Signal, bar models.PriceBar, multi bool) (models.ConsensusDecision, error) {
	if multi {
		return voter.Vote(signals, bar.Date)
	}
	if len(signals) == 0 {
		return models.ConsensusDecision{}, errors.NewInsufficientSignalsError(bar.Date)
	}
	s := signals[0]
	return models.ConsensusDecision{
		Direction:       s.Direction,
		Agreement:       1,
		PredictedReturn: s.PredictedReturn,
	}, nil
}

// openPosition sizes, opens and pays for a new position. When the fixed
// settlement fee tips the cost basis past settled cash, the quantity backs
// off one share at a time; at zero the entry is abandoned.
func openPosition(tracker *position.Tracker, account *Account, bars []models.PriceBar, i int, cfg *config.Simulation) error {
	bar := bars[i]
	pos, err := tracker.Open(position.EntryParams{
		Date:             bar.Date,
		Index:            i,
		Price:            bar.Close,
		AvailableCash:    account.Spendable(),
		EstimatedFeeRate: cfg.FeeProfile.EstimatedRate(),
		MinHoldUntil:     minHoldUntil(bars, i, cfg.MinHold),
		StopLossPct:      cfg.StopLossPct,
		TakeProfitPct:    cfg.TakeProfitPct,
	})
	if err != nil || pos == nil {
		return err
	}

	for pos.Quantity > 0 {
		value := bar.Close.Mul(decimal.NewFromInt(pos.Quantity))
		fees := cfg.FeeProfile.Compute(value)
		basis := value.Add(fees.Total())
		if basis.LessThanOrEqual(account.Spendable()) {
			pos.EntryFees = fees
			pos.CostBasis = basis
			account.Debit(basis)
			return nil
		}
		pos.Quantity--
	}

	// Not even one share fits once fees are included.
	_, err = tracker.Close()
	return err
}

// closePosition settles one exit: fees, tax, ledger record and net proceeds.
func closePosition(tracker *position.Tracker, exit position.Exit, bar models.PriceBar, cfg *config.Simulation) (models.ClosedTrade, decimal.Decimal, error) {
	pos, err := tracker.Close()
	if err != nil {
		return models.ClosedTrade{}, decimal.Zero, err
	}

	gross := exit.Price.Mul(decimal.NewFromInt(pos.Quantity))
	exitFees := cfg.FeeProfile.Compute(gross)
	holdingDays := int(bar.Date.Sub(pos.EntryDate).Hours() / 24)

	gain := gross.Sub(exitFees.Total()).Sub(pos.CostBasis)
	tax := cfg.TaxPolicy.Tax(gain, holdingDays, cfg.AnnualIncome)

	proceeds := gross.Sub(exitFees.Total()).Sub(tax)
	fees := pos.EntryFees.Add(exitFees)

	trade := models.ClosedTrade{
		EntryDate:     pos.EntryDate,
		ExitDate:      bar.Date,
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     exit.Price,
		Quantity:      pos.Quantity,
		GrossProceeds: gross,
		BrokerageFee:  fees.Brokerage,
		ClearingFee:   fees.Clearing,
		SettlementFee: fees.Settlement,
		TaxPaid:       tax,
		NetProfit:     proceeds.Sub(pos.CostBasis),
		ExitReason:    exit.Reason,
		HoldingDays:   holdingDays,
	}
	return trade, proceeds, nil
}

// settleProceeds parks sale proceeds for the settlement lag, counted in
// trading days against the bar sequence. A lag of zero credits immediately.
func settleProceeds(account *Account, proceeds decimal.Decimal, bars []models.PriceBar, i, lagDays int) {
	if lagDays == 0 {
		account.Credit(proceeds)
		return
	}
	settleIndex := i + lagDays
	if settleIndex < len(bars) {
		account.Enqueue(proceeds, bars[settleIndex].Date)
		return
	}
	// Settles after the simulated period; Finalize releases it at the end.
	account.Enqueue(proceeds, bars[len(bars)-1].Date.AddDate(0, 0, lagDays))
}

// minHoldUntil resolves the minimum holding period to a concrete date.
// Day units count trading days (bars); week, month, quarter and year are
// calendar arithmetic. A day-count running past the end of the series yields
// a date beyond the final bar, leaving only stop-loss and period-end exits.
func minHoldUntil(bars []models.PriceBar, i int, hold config.HoldPeriod) time.Time {
	entry := bars[i].Date
	if hold.Value <= 0 {
		return entry
	}
	switch hold.Unit {
	case config.HoldDays:
		idx := i + hold.Value
		if idx < len(bars) {
			return bars[idx].Date
		}
		return bars[len(bars)-1].Date.AddDate(0, 0, 1)
	case config.HoldWeeks:
		return entry.AddDate(0, 0, 7*hold.Value)
	case config.HoldMonths:
		return entry.AddDate(0, hold.Value, 0)
	case config.HoldQuarters:
		return entry.AddDate(0, 3*hold.Value, 0)
	case config.HoldYears:
		return entry.AddDate(hold.Value, 0, 0)
	default:
		return entry
	}
}
