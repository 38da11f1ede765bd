package predictor

import (
	"sort"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
)

// Factory builds a Predictor carrying the given model id.
type Factory func(id string) Predictor

// Registry maps model identifiers to factories. Construction happens once at
// configuration time; the backtest loop only ever sees Predictor values, so
// there is no string dispatch inside the hot path.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry preloaded with the built-in technical
// models.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("sma-crossover", func(id string) Predictor { return NewSMACrossover(id) })
	r.Register("rsi-reversal", func(id string) Predictor { return NewRSIReversal(id) })
	r.Register("macd-crossover", func(id string) Predictor { return NewMACDCrossover(id) })
	r.Register("momentum", func(id string) Predictor { return NewMomentum(id) })
	return r
}

// Register adds or replaces a model factory. External model adapters register
// themselves here before a run is configured.
func (r *Registry) Register(id string, factory Factory) {
	r.factories[id] = factory
}

// New constructs the predictor for the given model id.
func (r *Registry) New(id string) (Predictor, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownModel, "model %q", id)
	}
	return factory(id), nil
}

// NewSet constructs predictors for every id, preserving order.
func (r *Registry) NewSet(ids []string) ([]Predictor, error) {
	out := make([]Predictor, 0, len(ids))
	for _, id := range ids {
		p, err := r.New(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ModelIDs lists the registered model identifiers in sorted order.
func (r *Registry) ModelIDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
