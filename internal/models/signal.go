package models

// Direction is a model's opinion for one trading day.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// Signal is a single model's opinion for one day. PredictedReturn is the
// model's estimate of the next-period return as a fraction (0.02 = 2%); it is
// zero for HOLD signals.
type Signal struct {
	ModelID         string    `json:"model_id"`
	Direction       Direction `json:"direction"`
	PredictedReturn float64   `json:"predicted_return"`
}

// ConsensusDecision is the aggregated BUY/SELL/HOLD decision derived from a
// set of signals. Agreement is winning votes over total votes in [0, 1].
type ConsensusDecision struct {
	Direction       Direction `json:"direction"`
	Agreement       float64   `json:"agreement"`
	TieBreakApplied bool      `json:"tie_break_applied"`

	// PredictedReturn is the mean predicted return among the signals that
	// voted for the winning direction. It feeds the hurdle-rate gate.
	PredictedReturn float64 `json:"predicted_return"`
}
