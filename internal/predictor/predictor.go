// Package predictor defines the model interface the engine consumes and a
// registry of built-in technical models. Heavier ML models (random forest,
// gradient boosting, LSTM and friends) live outside this repository and plug
// in through the same interface.
package predictor

import (
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// Predictor produces one Signal per simulated day from the price history up
// to and including that day. Implementations must be deterministic: the same
// history always yields the same signal.
type Predictor interface {
	ModelID() string
	Predict(history []models.PriceBar) (models.Signal, error)
}

// closes extracts closing prices as float64 for indicator arithmetic.
// Indicators tolerate float rounding; only cash accounting needs decimals.
func closes(history []models.PriceBar) []float64 {
	out := make([]float64, len(history))
	for i, b := range history {
		out[i], _ = b.Close.Float64()
	}
	return out
}

func sma(closes []float64, end, period int) float64 {
	if end+1 < period {
		return 0
	}
	var sum float64
	for i := end - period + 1; i <= end; i++ {
		sum += closes[i]
	}
	return sum / float64(period)
}

func ema(closes []float64, end, period int) float64 {
	if end+1 < period {
		return sma(closes, end, end+1)
	}
	multiplier := 2.0 / float64(period+1)
	value := sma(closes, period-1, period)
	for i := period; i <= end; i++ {
		value = (closes[i]-value)*multiplier + value
	}
	return value
}

func rsi(closes []float64, end, period int) float64 {
	if end < period {
		return 50
	}
	var gains, losses float64
	for i := end - period + 1; i <= end; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func hold(modelID string) models.Signal {
	return models.Signal{ModelID: modelID, Direction: models.Hold}
}
