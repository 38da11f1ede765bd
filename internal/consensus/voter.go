// Package consensus aggregates per-model signals into a single daily
// BUY/SELL/HOLD decision by majority vote.
package consensus

import (
	"time"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// Voter produces one ConsensusDecision per day from a set of model signals.
// TieBreakerModelID designates the model whose own vote resolves an evenly
// split decision; it may be empty when signal sets are always odd-sized.
type Voter struct {
	TieBreakerModelID string
}

// NewVoter creates a voter with the given tie-breaker model.
func NewVoter(tieBreakerModelID string) *Voter {
	return &Voter{TieBreakerModelID: tieBreakerModelID}
}

// Vote counts the signals' directions and returns the majority decision.
//
// A direction that strictly exceeds every other wins outright. A tie on an
// odd-sized set (a 2-2-1 split, a three-way 1-1-1) resolves straight to
// HOLD; the tie-breaker model never arbitrates odd sets. On an even-sized
// set's tie the tie-breaker model's own signal decides, provided that
// signal is among the tied directions; otherwise the decision falls back to
// HOLD. An empty signal set is a caller bug and fails with
// InsufficientSignalsError.
//
// Vote is deterministic and side-effect free: identical signals and
// tie-breaker id always yield the identical decision.
func (v *Voter) Vote(signals []models.Signal, date time.Time) (models.ConsensusDecision, error) {
	if len(signals) == 0 {
		return models.ConsensusDecision{}, errors.NewInsufficientSignalsError(date)
	}

	counts := map[models.Direction]int{}
	for _, s := range signals {
		counts[s.Direction]++
	}

	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}

	var tied []models.Direction
	for _, d := range []models.Direction{models.Buy, models.Sell, models.Hold} {
		if counts[d] == top {
			tied = append(tied, d)
		}
	}

	if len(tied) == 1 {
		winner := tied[0]
		return models.ConsensusDecision{
			Direction:       winner,
			Agreement:       float64(counts[winner]) / float64(len(signals)),
			PredictedReturn: meanPredictedReturn(signals, winner),
		}, nil
	}

	// An odd-sized set cannot split evenly between two directions, so a tie
	// here always involves a third camp. That is indecision, not a coin
	// flip: hold, without consulting the tie-breaker.
	if len(signals)%2 == 1 {
		return models.ConsensusDecision{
			Direction:       models.Hold,
			Agreement:       float64(counts[models.Hold]) / float64(len(signals)),
			PredictedReturn: meanPredictedReturn(signals, models.Hold),
		}, nil
	}

	winner := v.breakTie(signals, tied)
	return models.ConsensusDecision{
		Direction:       winner,
		Agreement:       float64(counts[winner]) / float64(len(signals)),
		TieBreakApplied: true,
		PredictedReturn: meanPredictedReturn(signals, winner),
	}, nil
}

// breakTie consults the tie-breaker model's own signal. When that signal is
// not among the tied directions, or no tie-breaker is configured, HOLD is the
// safe default.
func (v *Voter) breakTie(signals []models.Signal, tied []models.Direction) models.Direction {
	if v.TieBreakerModelID == "" {
		return models.Hold
	}

	for _, s := range signals {
		if s.ModelID != v.TieBreakerModelID {
			continue
		}
		for _, d := range tied {
			if s.Direction == d {
				return d
			}
		}
		break
	}
	return models.Hold
}

func meanPredictedReturn(signals []models.Signal, winner models.Direction) float64 {
	var sum float64
	var n int
	for _, s := range signals {
		if s.Direction == winner {
			sum += s.PredictedReturn
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
