package predictor

import (
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// SMACrossover signals BUY when the short moving average crosses above the
// long one and SELL on the opposite cross. The predicted return is the
// normalized distance between the averages.
type SMACrossover struct {
	ID          string
	ShortPeriod int
	LongPeriod  int
}

// NewSMACrossover creates the crossover model with 10/20 defaults.
func NewSMACrossover(id string) *SMACrossover {
	return &SMACrossover{ID: id, ShortPeriod: 10, LongPeriod: 20}
}

func (m *SMACrossover) ModelID() string { return m.ID }

func (m *SMACrossover) Predict(history []models.PriceBar) (models.Signal, error) {
	c := closes(history)
	end := len(c) - 1
	if end < m.LongPeriod {
		return hold(m.ID), nil
	}

	short := sma(c, end, m.ShortPeriod)
	long := sma(c, end, m.LongPeriod)
	prevShort := sma(c, end-1, m.ShortPeriod)
	prevLong := sma(c, end-1, m.LongPeriod)

	if prevShort <= prevLong && short > long {
		return models.Signal{
			ModelID:         m.ID,
			Direction:       models.Buy,
			PredictedReturn: (short - long) / long,
		}, nil
	}
	if prevShort >= prevLong && short < long {
		return models.Signal{ModelID: m.ID, Direction: models.Sell}, nil
	}
	return hold(m.ID), nil
}

// RSIReversal signals BUY when RSI crosses up out of the oversold zone and
// SELL when it crosses down out of the overbought zone.
type RSIReversal struct {
	ID         string
	Period     int
	Oversold   float64
	Overbought float64
}

// NewRSIReversal creates the reversal model with 14/30/70 defaults.
func NewRSIReversal(id string) *RSIReversal {
	return &RSIReversal{ID: id, Period: 14, Oversold: 30, Overbought: 70}
}

func (m *RSIReversal) ModelID() string { return m.ID }

func (m *RSIReversal) Predict(history []models.PriceBar) (models.Signal, error) {
	c := closes(history)
	end := len(c) - 1
	if end < m.Period+1 {
		return hold(m.ID), nil
	}

	current := rsi(c, end, m.Period)
	previous := rsi(c, end-1, m.Period)

	if previous <= m.Oversold && current > m.Oversold {
		// Depth below the midline proxies the expected bounce.
		return models.Signal{
			ModelID:         m.ID,
			Direction:       models.Buy,
			PredictedReturn: (50 - current) / 1000,
		}, nil
	}
	if previous >= m.Overbought && current < m.Overbought {
		return models.Signal{ModelID: m.ID, Direction: models.Sell}, nil
	}
	return hold(m.ID), nil
}

// MACDCrossover signals on the MACD line crossing its signal line.
type MACDCrossover struct {
	ID           string
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// NewMACDCrossover creates the crossover model with 12/26/9 defaults.
func NewMACDCrossover(id string) *MACDCrossover {
	return &MACDCrossover{ID: id, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
}

func (m *MACDCrossover) ModelID() string { return m.ID }

func (m *MACDCrossover) Predict(history []models.PriceBar) (models.Signal, error) {
	c := closes(history)
	end := len(c) - 1
	if end < m.SlowPeriod+m.SignalPeriod {
		return hold(m.ID), nil
	}

	macd, signal := m.macdAt(c, end)
	prevMACD, prevSignal := m.macdAt(c, end-1)

	if prevMACD <= prevSignal && macd > signal {
		ret := 0.0
		if c[end] != 0 {
			ret = (macd - signal) / c[end]
		}
		return models.Signal{ModelID: m.ID, Direction: models.Buy, PredictedReturn: ret}, nil
	}
	if prevMACD >= prevSignal && macd < signal {
		return models.Signal{ModelID: m.ID, Direction: models.Sell}, nil
	}
	return hold(m.ID), nil
}

func (m *MACDCrossover) macdAt(c []float64, end int) (float64, float64) {
	macd := ema(c, end, m.FastPeriod) - ema(c, end, m.SlowPeriod)

	// Signal line: EMA of the MACD series over the signal period.
	series := make([]float64, 0, m.SignalPeriod)
	for i := end - m.SignalPeriod + 1; i <= end; i++ {
		series = append(series, ema(c, i, m.FastPeriod)-ema(c, i, m.SlowPeriod))
	}
	signal := ema(series, len(series)-1, m.SignalPeriod)
	return macd, signal
}

// Momentum signals BUY when the trailing return over the lookback window
// clears a threshold and SELL when it falls below the negative threshold.
type Momentum struct {
	ID        string
	Lookback  int
	Threshold float64
}

// NewMomentum creates the momentum model with a 20-bar lookback.
func NewMomentum(id string) *Momentum {
	return &Momentum{ID: id, Lookback: 20, Threshold: 0.02}
}

func (m *Momentum) ModelID() string { return m.ID }

func (m *Momentum) Predict(history []models.PriceBar) (models.Signal, error) {
	c := closes(history)
	end := len(c) - 1
	if end < m.Lookback || c[end-m.Lookback] == 0 {
		return hold(m.ID), nil
	}

	trailing := (c[end] - c[end-m.Lookback]) / c[end-m.Lookback]

	if trailing > m.Threshold {
		return models.Signal{
			ModelID:         m.ID,
			Direction:       models.Buy,
			PredictedReturn: trailing / float64(m.Lookback) * 5,
		}, nil
	}
	if trailing < -m.Threshold {
		return models.Signal{ModelID: m.ID, Direction: models.Sell}, nil
	}
	return hold(m.ID), nil
}
