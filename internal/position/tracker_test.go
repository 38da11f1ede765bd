package position

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(offset int) time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func openTestPosition(t *testing.T, tr *Tracker, minHoldUntil time.Time, takeProfitPct float64) *models.Position {
	t.Helper()
	pos, err := tr.Open(EntryParams{
		Date:             day(0),
		Price:            dec("100"),
		AvailableCash:    dec("10000"),
		EstimatedFeeRate: 0.002,
		MinHoldUntil:     minHoldUntil,
		StopLossPct:      0.10,
		TakeProfitPct:    takeProfitPct,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if pos == nil {
		t.Fatal("open returned no position")
	}
	return pos
}

func TestOpenSizesQuantityWithFeeHeadroom(t *testing.T) {
	tr := NewTracker()
	pos := openTestPosition(t, tr, day(3), 0)

	// floor(10000 / (100 * 1.002)) = floor(99.80) = 99
	if pos.Quantity != 99 {
		t.Errorf("quantity = %d, want 99", pos.Quantity)
	}
	if !pos.StopLossPrice.Equal(dec("90")) {
		t.Errorf("stop = %s, want 90", pos.StopLossPrice)
	}
	if tr.State() != Open {
		t.Errorf("state = %s, want OPEN", tr.State())
	}
}

func TestOpenWithTooLittleCashStaysFlat(t *testing.T) {
	tr := NewTracker()
	pos, err := tr.Open(EntryParams{
		Date:          day(0),
		Price:         dec("100"),
		AvailableCash: dec("50"),
		StopLossPct:   0.10,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if pos != nil {
		t.Fatal("expected no position for insufficient cash")
	}
	if tr.State() != Flat {
		t.Errorf("state = %s, want FLAT", tr.State())
	}
}

func TestGapDownExitsAtActualOpen(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(30), 0)

	// Stop at 90; market opens at 85.
	bar := models.PriceBar{Date: day(1), Open: dec("85"), High: dec("88"), Low: dec("84"), Close: dec("86")}
	exit, ok := tr.EvaluateExit(bar, models.Hold, false)
	if !ok {
		t.Fatal("expected exit")
	}
	if exit.Reason != models.ExitGapStopLoss {
		t.Errorf("reason = %s, want GAP_STOP_LOSS", exit.Reason)
	}
	if !exit.Price.Equal(dec("85")) {
		t.Errorf("exit price = %s, want 85 (the actual open, not the stop)", exit.Price)
	}
}

func TestIntradayStopExitsAtStopPrice(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(30), 0)

	bar := models.PriceBar{Date: day(1), Open: dec("95"), High: dec("96"), Low: dec("89"), Close: dec("92")}
	exit, ok := tr.EvaluateExit(bar, models.Hold, false)
	if !ok {
		t.Fatal("expected exit")
	}
	if exit.Reason != models.ExitStopLoss {
		t.Errorf("reason = %s, want STOP_LOSS", exit.Reason)
	}
	if !exit.Price.Equal(dec("90")) {
		t.Errorf("exit price = %s, want the stop price 90", exit.Price)
	}
}

func TestStopLossOverridesMinimumHold(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(30), 0) // hold window far in the future

	bar := models.PriceBar{Date: day(1), Open: dec("85"), Close: dec("86")}
	if _, ok := tr.EvaluateExit(bar, models.Hold, false); !ok {
		t.Error("stop-loss must fire inside the minimum hold window")
	}
}

func TestModelSellIgnoredDuringMinimumHold(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(5), 0)

	bar := models.PriceBar{Date: day(2), Close: dec("103")}
	if _, ok := tr.EvaluateExit(bar, models.Sell, false); ok {
		t.Error("model SELL must be ignored before MinHoldUntil")
	}

	// On the boundary date the hold has elapsed (>=, not >).
	bar = models.PriceBar{Date: day(5), Close: dec("103")}
	exit, ok := tr.EvaluateExit(bar, models.Sell, false)
	if !ok {
		t.Fatal("model SELL should fire once the hold window has passed")
	}
	if exit.Reason != models.ExitModel {
		t.Errorf("reason = %s, want MODEL_EXIT", exit.Reason)
	}
	if !exit.Price.Equal(dec("103")) {
		t.Errorf("exit price = %s, want the close 103", exit.Price)
	}
}

func TestTakeProfitIgnoredDuringMinimumHold(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(5), 0.08) // take-profit at 108

	bar := models.PriceBar{Date: day(2), High: dec("110"), Low: dec("101"), Open: dec("102"), Close: dec("109")}
	if _, ok := tr.EvaluateExit(bar, models.Hold, false); ok {
		t.Error("take-profit must be ignored before MinHoldUntil")
	}

	bar.Date = day(6)
	exit, ok := tr.EvaluateExit(bar, models.Hold, false)
	if !ok {
		t.Fatal("take-profit should fire after the hold window")
	}
	if exit.Reason != models.ExitTakeProfit {
		t.Errorf("reason = %s, want TAKE_PROFIT", exit.Reason)
	}
	if !exit.Price.Equal(dec("108")) {
		t.Errorf("exit price = %s, want the take-profit price 108", exit.Price)
	}
}

func TestStopLossBeatsTakeProfitOnTheSameBar(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(0), 0.08)

	// A wild bar touching both triggers: the stop wins.
	bar := models.PriceBar{Date: day(1), Open: dec("100"), High: dec("110"), Low: dec("88"), Close: dec("95")}
	exit, ok := tr.EvaluateExit(bar, models.Hold, false)
	if !ok {
		t.Fatal("expected exit")
	}
	if exit.Reason != models.ExitStopLoss {
		t.Errorf("reason = %s, want STOP_LOSS to take priority", exit.Reason)
	}
}

func TestPeriodEndForcesExit(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(30), 0)

	bar := models.PriceBar{Date: day(2), Close: dec("101")}
	exit, ok := tr.EvaluateExit(bar, models.Hold, true)
	if !ok {
		t.Fatal("expected forced exit on the final bar")
	}
	if exit.Reason != models.ExitPeriodEnd {
		t.Errorf("reason = %s, want PERIOD_END", exit.Reason)
	}
	if !exit.Price.Equal(dec("101")) {
		t.Errorf("exit price = %s, want the final close", exit.Price)
	}
}

func TestCloseReturnsToFlat(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(3), 0)

	if _, err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if tr.State() != Flat {
		t.Errorf("state = %s, want FLAT", tr.State())
	}
	if _, err := tr.Close(); err == nil {
		t.Error("closing a flat tracker should fail")
	}
}

func TestCloseOnlyDataStopBehaviour(t *testing.T) {
	tr := NewTracker()
	openTestPosition(t, tr, day(30), 0)

	// Close-only bar strictly below the stop: fill at the observed close.
	bar := models.PriceBar{Date: day(1), Close: dec("87")}
	exit, ok := tr.EvaluateExit(bar, models.Hold, false)
	if !ok {
		t.Fatal("expected exit")
	}
	if exit.Reason != models.ExitGapStopLoss || !exit.Price.Equal(dec("87")) {
		t.Errorf("got %s at %s, want GAP_STOP_LOSS at 87", exit.Reason, exit.Price)
	}
}
