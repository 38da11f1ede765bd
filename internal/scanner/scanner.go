// Package scanner runs backtests in batch across tickers and models. Units
// are independent; one bad ticker never aborts the scan.
package scanner

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/config"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/engine"
	apperrors "github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/performance"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/predictor"
)

// BarSource supplies price history per ticker. The SQLite store satisfies
// this; tests use in-memory maps.
type BarSource interface {
	GetBars(ticker string) ([]models.PriceBar, error)
}

// Unit is one ticker/model combination to simulate.
type Unit struct {
	Ticker  string `json:"ticker"`
	ModelID string `json:"model_id"`
}

// UnitResult is a completed unit with its run summary.
type UnitResult struct {
	Unit    Unit           `json:"unit"`
	Summary engine.Summary `json:"summary"`
}

// UnitError records a failed unit. The scan keeps going.
type UnitError struct {
	Unit Unit   `json:"unit"`
	Err  error  `json:"-"`
	Msg  string `json:"error"`
}

// Report is the outcome of a scan: successful unit results ranked by ROI
// descending, plus the failures. Partial reports from a cancelled scan are
// valid for the units that completed.
type Report struct {
	Results []UnitResult `json:"results"`
	Errors  []UnitError  `json:"errors"`
}

// Scanner drives batch simulations.
type Scanner struct {
	source   BarSource
	registry *predictor.Registry
	cfg      *config.Simulation
	workers  int
	progress bool
	log      zerolog.Logger
}

// New creates a scanner. workers <= 0 lets the pool pick a default.
func New(source BarSource, registry *predictor.Registry, cfg *config.Simulation, workers int, progress bool, log zerolog.Logger) *Scanner {
	return &Scanner{
		source:   source,
		registry: registry,
		cfg:      cfg,
		workers:  workers,
		progress: progress,
		log:      log,
	}
}

// Units expands tickers x models into scan units, preserving order.
func Units(tickers, modelIDs []string) []Unit {
	units := make([]Unit, 0, len(tickers)*len(modelIDs))
	for _, ticker := range tickers {
		for _, id := range modelIDs {
			units = append(units, Unit{Ticker: ticker, ModelID: id})
		}
	}
	return units
}

// Scan runs every unit through the engine. Cancellation is cooperative:
// units not yet started are skipped and the partial report is returned
// alongside ErrScanCancelled. Results are ranked by ROI descending.
func (s *Scanner) Scan(ctx context.Context, units []Unit) (*Report, error) {
	report := &Report{}

	var bar *progressbar.ProgressBar
	if s.progress {
		bar = progressbar.Default(int64(len(units)), "scanning")
	}

	pool := performance.NewWorkerPool(s.workers)
	pool.Start()
	defer pool.Stop()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, unit := range units {
		if ctx.Err() != nil {
			break
		}

		unit := unit
		wg.Add(1)
		submitted := pool.SubmitWait(ctx, func() {
			defer wg.Done()
			if bar != nil {
				defer bar.Add(1)
			}

			if ctx.Err() != nil {
				return
			}

			result, err := s.runUnit(unit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn().Str("ticker", unit.Ticker).Str("model", unit.ModelID).Err(err).Msg("scan unit failed")
				report.Errors = append(report.Errors, UnitError{Unit: unit, Err: err, Msg: err.Error()})
				return
			}
			report.Results = append(report.Results, UnitResult{Unit: unit, Summary: result.Summary})
		})
		if !submitted {
			// Cancelled while waiting for queue space. The remaining units
			// are skipped and surfaced through ErrScanCancelled.
			wg.Done()
			break
		}
	}
	wg.Wait()

	rankByROI(report.Results)
	if err := ctx.Err(); err != nil {
		return report, apperrors.Wrap(apperrors.ErrScanCancelled, err.Error())
	}
	return report, nil
}

func (s *Scanner) runUnit(unit Unit) (*engine.Result, error) {
	bars, err := s.source.GetBars(unit.Ticker)
	if err != nil {
		return nil, err
	}
	model, err := s.registry.New(unit.ModelID)
	if err != nil {
		return nil, err
	}
	return engine.Run(unit.Ticker, bars, []predictor.Predictor{model}, s.cfg)
}

// rankByROI sorts results by ROI descending; ties fall back to ticker then
// model id so rankings are stable across runs.
func rankByROI(results []UnitResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Summary.ROI != b.Summary.ROI {
			return a.Summary.ROI > b.Summary.ROI
		}
		if a.Unit.Ticker != b.Unit.Ticker {
			return a.Unit.Ticker < b.Unit.Ticker
		}
		return a.Unit.ModelID < b.Unit.ModelID
	})
}

// SuperStars returns the top n results across the whole scan.
func (r *Report) SuperStars(n int) []UnitResult {
	if n <= 0 || n > len(r.Results) {
		n = len(r.Results)
	}
	return r.Results[:n]
}

// ModelComparison groups results per ticker, each group ranked by ROI.
// Map keys are tickers; iteration order is the caller's concern.
func (r *Report) ModelComparison() map[string][]UnitResult {
	byTicker := make(map[string][]UnitResult)
	for _, result := range r.Results {
		byTicker[result.Unit.Ticker] = append(byTicker[result.Unit.Ticker], result)
	}
	return byTicker
}

// Tickers returns the distinct tickers present in the results, sorted.
func (r *Report) Tickers() []string {
	seen := make(map[string]struct{})
	for _, result := range r.Results {
		seen[result.Unit.Ticker] = struct{}{}
	}
	tickers := make([]string, 0, len(seen))
	for ticker := range seen {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}
