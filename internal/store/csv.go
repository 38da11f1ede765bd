package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/performance"
)

// csvBarRow is the on-disk CSV shape for price history. Dates are
// YYYY-MM-DD; open/high/low/volume may be empty for close-only data.
type csvBarRow struct {
	Date   string `csv:"date"`
	Open   string `csv:"open"`
	High   string `csv:"high"`
	Low    string `csv:"low"`
	Close  string `csv:"close"`
	Volume int64  `csv:"volume"`
}

func (r csvBarRow) toBar() (models.PriceBar, error) {
	var bar models.PriceBar

	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return bar, fmt.Errorf("bad date %q: %w", r.Date, err)
	}
	bar.Date = date
	bar.Volume = r.Volume

	parse := func(raw string, dst *decimal.Decimal) error {
		if raw == "" {
			*dst = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("bad price %q: %w", raw, err)
		}
		*dst = d
		return nil
	}
	if err := parse(r.Open, &bar.Open); err != nil {
		return bar, err
	}
	if err := parse(r.High, &bar.High); err != nil {
		return bar, err
	}
	if err := parse(r.Low, &bar.Low); err != nil {
		return bar, err
	}
	if err := parse(r.Close, &bar.Close); err != nil {
		return bar, err
	}
	if !bar.Close.IsPositive() {
		return bar, fmt.Errorf("missing close for %s", r.Date)
	}
	return bar, nil
}

// ImportCSV reads price history from r and saves it for the ticker in
// batches. Returns the number of bars imported.
func (s *SQLiteStore) ImportCSV(ctx context.Context, ticker string, r io.Reader) (int, error) {
	var rows []csvBarRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse csv: %w", err)
	}

	imported := 0
	batcher := performance.NewBatchProcessor(500, func(bars []models.PriceBar) error {
		if err := s.SaveBars(ctx, ticker, bars); err != nil {
			return err
		}
		imported += len(bars)
		return nil
	})

	for _, row := range rows {
		bar, err := row.toBar()
		if err != nil {
			return imported, err
		}
		if err := batcher.Add(bar); err != nil {
			return imported, err
		}
	}
	if err := batcher.Flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

// csvScanRow is the CSV export shape for scan rankings.
type csvScanRow struct {
	Rank        int     `csv:"rank"`
	Ticker      string  `csv:"ticker"`
	Model       string  `csv:"model"`
	ROI         float64 `csv:"roi"`
	Annualized  float64 `csv:"annualized_return"`
	WinRate     float64 `csv:"win_rate"`
	MaxDrawdown float64 `csv:"max_drawdown"`
	Sharpe      float64 `csv:"sharpe_ratio"`
	Trades      int     `csv:"trades"`
	NetProfit   string  `csv:"net_profit"`
	FinalEquity string  `csv:"final_equity"`
}

// ExportScanCSV writes scan records to w as CSV, in the order given.
func ExportScanCSV(w io.Writer, records []ScanRecord) error {
	rows := make([]csvScanRow, len(records))
	for i, r := range records {
		rows[i] = csvScanRow{
			Rank:        i + 1,
			Ticker:      r.Ticker,
			Model:       r.ModelID,
			ROI:         r.ROI,
			Annualized:  r.AnnualizedReturn,
			WinRate:     r.WinRate,
			MaxDrawdown: r.MaxDrawdown,
			Sharpe:      r.SharpeRatio,
			Trades:      r.Trades,
			NetProfit:   r.NetProfit.String(),
			FinalEquity: r.FinalEquity.String(),
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
