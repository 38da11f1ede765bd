package predictor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

func series(closes ...float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return bars
}

// signalsOver replays the model across every prefix of the series, the way
// the engine feeds it, and collects the non-HOLD signals.
func signalsOver(t *testing.T, model Predictor, bars []models.PriceBar) []models.Signal {
	t.Helper()
	var out []models.Signal
	for i := range bars {
		sig, err := model.Predict(bars[: i+1 : i+1])
		if err != nil {
			t.Fatalf("predict at bar %d: %v", i, err)
		}
		if sig.Direction != models.Hold {
			out = append(out, sig)
		}
	}
	return out
}

func flatSeries(n int) []models.PriceBar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
	}
	return series(closes...)
}

func TestModelsHoldOnFlatPrices(t *testing.T) {
	bars := flatSeries(60)
	for _, id := range []string{"sma-crossover", "rsi-reversal", "macd-crossover", "momentum"} {
		model, err := NewRegistry().New(id)
		if err != nil {
			t.Fatalf("build %s: %v", id, err)
		}
		if signals := signalsOver(t, model, bars); len(signals) != 0 {
			t.Errorf("%s signalled %d times on flat prices", id, len(signals))
		}
	}
}

func TestModelsHoldOnShortHistory(t *testing.T) {
	bars := series(100, 101, 102)
	for _, id := range []string{"sma-crossover", "rsi-reversal", "macd-crossover", "momentum"} {
		model, err := NewRegistry().New(id)
		if err != nil {
			t.Fatalf("build %s: %v", id, err)
		}
		sig, err := model.Predict(bars)
		if err != nil {
			t.Fatalf("%s on short history: %v", id, err)
		}
		if sig.Direction != models.Hold {
			t.Errorf("%s = %s on short history, want HOLD", id, sig.Direction)
		}
		if sig.ModelID != id {
			t.Errorf("%s signal carries model id %q", id, sig.ModelID)
		}
	}
}

func TestSMACrossoverSignalsOnTrendReversal(t *testing.T) {
	// Decline long enough to pull both averages down, then a sharp rally:
	// the short average must cross above the long one somewhere in the rise.
	closes := make([]float64, 0, 45)
	price := 120.0
	for i := 0; i < 25; i++ {
		price -= 1.0
		closes = append(closes, price)
	}
	for i := 0; i < 20; i++ {
		price += 2.5
		closes = append(closes, price)
	}

	signals := signalsOver(t, NewSMACrossover("sma-crossover"), series(closes...))

	var buys int
	for _, sig := range signals {
		if sig.Direction == models.Buy {
			buys++
			if sig.PredictedReturn <= 0 {
				t.Errorf("BUY with predicted return %v, want positive", sig.PredictedReturn)
			}
		}
	}
	if buys == 0 {
		t.Error("no BUY across a clear golden cross")
	}
}

func TestSMACrossoverSignalsSellOnBreakdown(t *testing.T) {
	closes := make([]float64, 0, 45)
	price := 80.0
	for i := 0; i < 25; i++ {
		price += 1.0
		closes = append(closes, price)
	}
	for i := 0; i < 20; i++ {
		price -= 2.5
		closes = append(closes, price)
	}

	signals := signalsOver(t, NewSMACrossover("sma-crossover"), series(closes...))

	var sells int
	for _, sig := range signals {
		if sig.Direction == models.Sell {
			sells++
		}
	}
	if sells == 0 {
		t.Error("no SELL across a clear death cross")
	}
}

func TestRSIReversalBuysOversoldBounce(t *testing.T) {
	// Grind down far enough to pin RSI near zero, then bounce.
	closes := make([]float64, 0, 40)
	price := 150.0
	for i := 0; i < 25; i++ {
		price -= 2.0
		closes = append(closes, price)
	}
	for i := 0; i < 10; i++ {
		price += 3.0
		closes = append(closes, price)
	}

	signals := signalsOver(t, NewRSIReversal("rsi-reversal"), series(closes...))

	var buys int
	for _, sig := range signals {
		if sig.Direction == models.Buy {
			buys++
		}
	}
	if buys == 0 {
		t.Error("no BUY on an oversold bounce")
	}
}

func TestMomentumThresholds(t *testing.T) {
	model := NewMomentum("momentum")

	rising := make([]float64, 25)
	for i := range rising {
		rising[i] = 100 * (1 + 0.01*float64(i))
	}
	sig, err := model.Predict(series(rising...))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if sig.Direction != models.Buy {
		t.Errorf("rising series = %s, want BUY", sig.Direction)
	}
	if sig.PredictedReturn <= 0 {
		t.Errorf("predicted return = %v, want positive", sig.PredictedReturn)
	}

	falling := make([]float64, 25)
	for i := range falling {
		falling[i] = 100 * (1 - 0.01*float64(i))
	}
	sig, err = model.Predict(series(falling...))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if sig.Direction != models.Sell {
		t.Errorf("falling series = %s, want SELL", sig.Direction)
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	_, err := NewRegistry().New("not-a-model")
	if !apperrors.Is(err, apperrors.ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}

	_, err = NewRegistry().NewSet([]string{"momentum", "not-a-model"})
	if !apperrors.Is(err, apperrors.ErrUnknownModel) {
		t.Fatalf("NewSet err = %v, want ErrUnknownModel", err)
	}
}

func TestRegistryListsBuiltins(t *testing.T) {
	ids := NewRegistry().ModelIDs()
	want := []string{"macd-crossover", "momentum", "rsi-reversal", "sma-crossover"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s (sorted)", i, ids[i], want[i])
		}
	}
}

func TestRegistryCustomModel(t *testing.T) {
	r := NewRegistry()
	r.Register("custom", func(id string) Predictor { return NewMomentum(id) })

	model, err := r.New("custom")
	if err != nil {
		t.Fatalf("new custom: %v", err)
	}
	if model.ModelID() != "custom" {
		t.Errorf("model id = %s, want the registered id", model.ModelID())
	}
}
