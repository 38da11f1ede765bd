// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

// SQLiteStore persists price history and scan results.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes. Prices are stored as
// text so decimal values round-trip exactly.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		date DATE NOT NULL,
		open TEXT NOT NULL DEFAULT '0',
		high TEXT NOT NULL DEFAULT '0',
		low TEXT NOT NULL DEFAULT '0',
		close TEXT NOT NULL,
		volume INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(ticker, date)
	);

	CREATE TABLE IF NOT EXISTS scan_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scanned_at DATETIME NOT NULL,
		ticker TEXT NOT NULL,
		model TEXT NOT NULL,
		roi REAL NOT NULL,
		annualized_return REAL NOT NULL,
		win_rate REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		trades INTEGER NOT NULL,
		net_profit TEXT NOT NULL,
		final_equity TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bars_ticker ON price_bars(ticker);
	CREATE INDEX IF NOT EXISTS idx_bars_ticker_date ON price_bars(ticker, date);
	CREATE INDEX IF NOT EXISTS idx_results_ticker ON scan_results(ticker);
	CREATE INDEX IF NOT EXISTS idx_results_scanned ON scan_results(scanned_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBars upserts price bars for a ticker in one transaction.
func (s *SQLiteStore) SaveBars(ctx context.Context, ticker string, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO price_bars (ticker, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.ExecContext(ctx, ticker, b.Date.Format("2006-01-02"),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(), b.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBars returns the full price history for a ticker in date order.
func (s *SQLiteStore) GetBars(ctx context.Context, ticker string) ([]models.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume
		FROM price_bars
		WHERE ticker = ?
		ORDER BY date ASC
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []models.PriceBar
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "no price history for %q", ticker)
	}
	return bars, nil
}

func scanBar(rows *sql.Rows) (models.PriceBar, error) {
	var (
		bar     models.PriceBar
		dateStr string
		ohlc    [4]string
	)
	if err := rows.Scan(&dateStr, &ohlc[0], &ohlc[1], &ohlc[2], &ohlc[3], &bar.Volume); err != nil {
		return bar, fmt.Errorf("failed to scan bar: %w", err)
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return bar, fmt.Errorf("bad date %q: %w", dateStr, err)
	}
	bar.Date = date

	fields := []*decimal.Decimal{&bar.Open, &bar.High, &bar.Low, &bar.Close}
	for i, raw := range ohlc {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return bar, fmt.Errorf("bad price %q: %w", raw, err)
		}
		*fields[i] = d
	}
	return bar, nil
}

// ListTickers returns every ticker with stored history, sorted.
func (s *SQLiteStore) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM price_bars ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// ScanRecord is one persisted scan-unit outcome.
type ScanRecord struct {
	ScannedAt        time.Time
	Ticker           string
	ModelID          string
	ROI              float64
	AnnualizedReturn float64
	WinRate          float64
	MaxDrawdown      float64
	SharpeRatio      float64
	Trades           int
	NetProfit        decimal.Decimal
	FinalEquity      decimal.Decimal
}

// SaveScanRecords persists a batch of scan outcomes in one transaction.
func (s *SQLiteStore) SaveScanRecords(ctx context.Context, records []ScanRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scan_results (scanned_at, ticker, model, roi, annualized_return,
			win_rate, max_drawdown, sharpe_ratio, trades, net_profit, final_equity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx, r.ScannedAt, r.Ticker, r.ModelID, r.ROI,
			r.AnnualizedReturn, r.WinRate, r.MaxDrawdown, r.SharpeRatio,
			r.Trades, r.NetProfit.String(), r.FinalEquity.String())
		if err != nil {
			return fmt.Errorf("failed to insert scan record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestScanRecords returns the most recent scan's records ranked by ROI.
func (s *SQLiteStore) LatestScanRecords(ctx context.Context, limit int) ([]ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scanned_at, ticker, model, roi, annualized_return, win_rate,
			max_drawdown, sharpe_ratio, trades, net_profit, final_equity
		FROM scan_results
		WHERE scanned_at = (SELECT MAX(scanned_at) FROM scan_results)
		ORDER BY roi DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var (
			r          ScanRecord
			netProfit  string
			finalEquty string
		)
		if err := rows.Scan(&r.ScannedAt, &r.Ticker, &r.ModelID, &r.ROI,
			&r.AnnualizedReturn, &r.WinRate, &r.MaxDrawdown, &r.SharpeRatio,
			&r.Trades, &netProfit, &finalEquty); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if r.NetProfit, err = decimal.NewFromString(netProfit); err != nil {
			return nil, fmt.Errorf("bad net profit %q: %w", netProfit, err)
		}
		if r.FinalEquity, err = decimal.NewFromString(finalEquty); err != nil {
			return nil, fmt.Errorf("bad final equity %q: %w", finalEquty, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// BoundSource binds a context to the store so batch scans can read history
// through a plain per-ticker interface.
type BoundSource struct {
	ctx   context.Context
	store *SQLiteStore
}

// WithContext returns a bar source bound to ctx.
func (s *SQLiteStore) WithContext(ctx context.Context) *BoundSource {
	return &BoundSource{ctx: ctx, store: s}
}

// GetBars returns the stored history for the ticker.
func (b *BoundSource) GetBars(ticker string) ([]models.PriceBar, error) {
	return b.store.GetBars(b.ctx, ticker)
}
