package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBars() []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return []models.PriceBar{
		{Date: start, Open: decimal.NewFromInt(100), High: decimal.NewFromInt(103), Low: decimal.NewFromInt(99), Close: decimal.RequireFromString("101.55"), Volume: 1200},
		{Date: start.AddDate(0, 0, 1), Close: decimal.RequireFromString("102.10")},
		{Date: start.AddDate(0, 0, 2), Close: decimal.NewFromInt(104), Volume: 900},
	}
}

func TestSaveAndGetBars(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveBars(ctx, "BHP.AX", testBars()); err != nil {
		t.Fatalf("save: %v", err)
	}

	bars, err := s.GetBars(ctx, "BHP.AX")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}
	if !bars[0].Close.Equal(decimal.RequireFromString("101.55")) {
		t.Errorf("close = %s, want exact 101.55", bars[0].Close)
	}
	if !bars[0].HasOpen() || bars[1].HasOpen() {
		t.Error("open flags lost in round trip")
	}
	if !bars[1].Date.After(bars[0].Date) || !bars[2].Date.After(bars[1].Date) {
		t.Error("bars not in date order")
	}
}

func TestSaveBarsUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bars := testBars()
	if err := s.SaveBars(ctx, "BHP.AX", bars); err != nil {
		t.Fatalf("save: %v", err)
	}
	bars[0].Close = decimal.NewFromInt(200)
	if err := s.SaveBars(ctx, "BHP.AX", bars[:1]); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := s.GetBars(ctx, "BHP.AX")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("bars = %d, want 3 (upsert must not duplicate)", len(got))
	}
	if !got[0].Close.Equal(decimal.NewFromInt(200)) {
		t.Errorf("close = %s, want replaced 200", got[0].Close)
	}
}

func TestGetBarsMissingTicker(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetBars(context.Background(), "NOPE")
	if !apperrors.Is(err, apperrors.ErrDataNotFound) {
		t.Fatalf("err = %v, want ErrDataNotFound", err)
	}
}

func TestListTickers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, ticker := range []string{"CBA.AX", "AAPL", "BHP.AX"} {
		if err := s.SaveBars(ctx, ticker, testBars()); err != nil {
			t.Fatalf("save %s: %v", ticker, err)
		}
	}

	tickers, err := s.ListTickers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"AAPL", "BHP.AX", "CBA.AX"}
	if len(tickers) != len(want) {
		t.Fatalf("tickers = %v, want %v", tickers, want)
	}
	for i := range want {
		if tickers[i] != want[i] {
			t.Errorf("tickers[%d] = %s, want %s", i, tickers[i], want[i])
		}
	}
}

func TestScanRecordsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	scannedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	records := []ScanRecord{
		{ScannedAt: scannedAt, Ticker: "UP", ModelID: "momentum", ROI: 0.30, Trades: 4, NetProfit: decimal.NewFromInt(3000), FinalEquity: decimal.NewFromInt(13000)},
		{ScannedAt: scannedAt, Ticker: "DOWN", ModelID: "momentum", ROI: -0.10, Trades: 2, NetProfit: decimal.NewFromInt(-1000), FinalEquity: decimal.NewFromInt(9000)},
	}
	if err := s.SaveScanRecords(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LatestScanRecords(ctx, 10)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0].Ticker != "UP" {
		t.Errorf("top record = %s, want UP (ROI descending)", got[0].Ticker)
	}
	if !got[1].NetProfit.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("net profit = %s, want -1000", got[1].NetProfit)
	}
}

func TestImportCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"date,open,high,low,close,volume",
		"2024-01-02,100,103,99,101.55,1200",
		"2024-01-03,,,,102.10,0",
		"2024-01-04,103,105,102,104,900",
	}, "\n")

	n, err := s.ImportCSV(ctx, "BHP.AX", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("imported = %d, want 3", n)
	}

	bars, err := s.GetBars(ctx, "BHP.AX")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}
	if bars[1].HasOpen() {
		t.Error("close-only row should have no open")
	}
	if !bars[1].Close.Equal(decimal.RequireFromString("102.10")) {
		t.Errorf("close = %s, want 102.10", bars[1].Close)
	}
}

func TestImportCSVRejectsMissingClose(t *testing.T) {
	s := openTestStore(t)

	csvData := "date,open,high,low,close,volume\n2024-01-02,100,103,99,,1200\n"
	if _, err := s.ImportCSV(context.Background(), "BAD", strings.NewReader(csvData)); err == nil {
		t.Fatal("expected error for missing close")
	}
}

func TestExportScanCSV(t *testing.T) {
	records := []ScanRecord{
		{Ticker: "UP", ModelID: "momentum", ROI: 0.30, NetProfit: decimal.NewFromInt(3000), FinalEquity: decimal.NewFromInt(13000)},
	}

	var buf bytes.Buffer
	if err := ExportScanCSV(&buf, records); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "rank,ticker,model") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "UP,momentum") {
		t.Errorf("missing record in %q", out)
	}
	if !strings.Contains(out, "1,UP") {
		t.Errorf("missing rank in %q", out)
	}
}

func TestBoundSourceServesScanner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveBars(ctx, "BHP.AX", testBars()); err != nil {
		t.Fatalf("save: %v", err)
	}

	source := s.WithContext(ctx)
	bars, err := source.GetBars("BHP.AX")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(bars) != 3 {
		t.Errorf("bars = %d, want 3", len(bars))
	}
}
