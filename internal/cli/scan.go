package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/logging"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/scanner"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/store"
	"github.com/yannicklin/share-investment-strategy-model-sub000/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	var (
		tickersFlag []string
		modelsFlag  []string
		workers     int
		csvPath     string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Backtest every ticker/model combination and rank the results",
		Long: `Run the simulation for each ticker and model combination, rank the
outcomes by ROI and persist them. Failed units are reported but never
abort the batch; Ctrl-C stops cleanly and keeps finished results.`,
		Example: `  sim scan
  sim scan --tickers BHP.AX,CBA.AX --models momentum
  sim scan --workers 8 --csv ranking.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}
			ctx := cmd.Context()

			tickers := tickersFlag
			if len(tickers) == 0 {
				tickers = app.Config.Scan.Tickers
			}
			if len(tickers) == 0 {
				stored, err := app.Store.ListTickers(ctx)
				if err != nil {
					return err
				}
				tickers = stored
			}
			if len(tickers) == 0 {
				return fmt.Errorf("no tickers to scan; import price data first")
			}

			models := modelsFlag
			if len(models) == 0 {
				models = app.Config.Simulation.Models
			}

			if workers == 0 {
				workers = app.Config.Scan.Workers
			}
			progress := app.Config.Scan.Progress && !output.IsJSON()

			cfg := app.Config.Simulation
			s := scanner.New(app.Store.WithContext(ctx), app.Registry, &cfg, workers, progress, app.Logger)

			started := time.Now()
			units := scanner.Units(tickers, models)
			report, err := s.Scan(ctx, units)
			if err != nil && !errors.Is(err, errors.ErrScanCancelled) {
				return err
			}
			cancelled := errors.Is(err, errors.ErrScanCancelled)
			logging.LogScan(app.Logger, len(units), len(report.Errors), time.Since(started))

			records := toRecords(report, started)
			if saveErr := app.Store.SaveScanRecords(ctx, records); saveErr != nil && !cancelled {
				return saveErr
			}

			if csvPath == "" {
				csvPath = app.Config.Scan.SaveCSV
			}
			if csvPath != "" {
				if err := writeScanCSV(csvPath, records); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			printRanking(output, report)
			if cancelled {
				output.Warning("Scan cancelled; results above are partial")
			}
			if csvPath != "" {
				output.Dim("Ranking written to %s", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tickersFlag, "tickers", nil, "tickers to scan (default: configured or all stored)")
	cmd.Flags().StringSliceVar(&modelsFlag, "models", nil, "models to scan (default: configured)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default: configured)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the ranking to a CSV file")
	return cmd
}

func newSuperStarsCmd(app *App) *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "superstars",
		Short: "Show the top performers from the latest scan",
		Example: `  sim superstars
  sim superstars --top 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}
			if topN == 0 {
				topN = app.Config.Scan.TopN
			}
			if topN == 0 {
				topN = 10
			}

			records, err := app.Store.LatestScanRecords(cmd.Context(), topN)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no scan results stored; run 'sim scan' first")
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			output.Println()
			color.Cyan("Super Stars — top %d of scan at %s", len(records), records[0].ScannedAt.Format("2006-01-02 15:04"))
			output.Println(strings.Repeat("─", 78))
			output.Printf("%4s %-12s %-16s %10s %10s %8s %12s\n",
				"#", "Ticker", "Model", "ROI", "Ann.", "Trades", "Net P/L")
			for i, r := range records {
				line := fmt.Sprintf("%4d %-12s %-16s %10s %10s %8d %12s",
					i+1, r.Ticker, r.ModelID,
					utils.FormatPercent(r.ROI), utils.FormatPercent(r.AnnualizedReturn),
					r.Trades, utils.FormatPnL(r.NetProfit))
				if r.ROI < 0 {
					output.Loss("%s", line)
				} else {
					output.Gain("%s", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topN, "top", 0, "number of results to show")
	return cmd
}

func newCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <ticker>",
		Short: "Compare every registered model against one ticker",
		Example: `  sim compare BHP.AX
  sim compare BHP.AX --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ticker := args[0]
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}
			ctx := cmd.Context()

			cfg := app.Config.Simulation
			sc := scanner.New(app.Store.WithContext(ctx), app.Registry, &cfg, app.Config.Scan.Workers, false, app.Logger)

			report, err := sc.Scan(ctx, scanner.Units([]string{ticker}, app.Registry.ModelIDs()))
			if err != nil {
				return err
			}
			for _, unitErr := range report.Errors {
				output.Warning("%s/%s failed: %s", unitErr.Unit.Ticker, unitErr.Unit.ModelID, unitErr.Msg)
			}

			if output.IsJSON() {
				return output.JSON(report.ModelComparison())
			}

			output.Println()
			color.Cyan("Models Comparison — %s", ticker)
			output.Println(strings.Repeat("─", 78))
			output.Printf("%-16s %10s %10s %8s %10s %8s\n",
				"Model", "ROI", "Win rate", "Trades", "Drawdown", "Sharpe")
			for _, result := range report.ModelComparison()[ticker] {
				s := result.Summary
				line := fmt.Sprintf("%-16s %10s %9.1f%% %8d %10s %8.2f",
					result.Unit.ModelID, utils.FormatPercent(s.ROI), s.WinRate*100,
					s.Trades, utils.FormatPercent(-s.MaxDrawdown), s.SharpeRatio)
				if s.ROI < 0 {
					output.Loss("%s", line)
				} else {
					output.Gain("%s", line)
				}
			}
			return nil
		},
	}
	return cmd
}

func toRecords(report *scanner.Report, scannedAt time.Time) []store.ScanRecord {
	records := make([]store.ScanRecord, len(report.Results))
	for i, result := range report.Results {
		s := result.Summary
		records[i] = store.ScanRecord{
			ScannedAt:        scannedAt,
			Ticker:           result.Unit.Ticker,
			ModelID:          result.Unit.ModelID,
			ROI:              s.ROI,
			AnnualizedReturn: s.AnnualizedReturn,
			WinRate:          s.WinRate,
			MaxDrawdown:      s.MaxDrawdown,
			SharpeRatio:      s.SharpeRatio,
			Trades:           s.Trades,
			NetProfit:        s.NetProfit,
			FinalEquity:      s.FinalEquity,
		}
	}
	return records
}

func writeScanCSV(path string, records []store.ScanRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return store.ExportScanCSV(f, records)
}

func printRanking(output *Output, report *scanner.Report) {
	output.Println()
	color.Cyan("Scan Results — %d units, %d failed", len(report.Results)+len(report.Errors), len(report.Errors))
	output.Println(strings.Repeat("─", 78))

	output.Printf("%4s %-12s %-16s %10s %8s %10s %12s\n",
		"#", "Ticker", "Model", "ROI", "Trades", "Win rate", "Net P/L")
	for i, result := range report.Results {
		s := result.Summary
		line := fmt.Sprintf("%4d %-12s %-16s %10s %8d %9.1f%% %12s",
			i+1, result.Unit.Ticker, result.Unit.ModelID,
			utils.FormatPercent(s.ROI), s.Trades, s.WinRate*100,
			utils.FormatPnL(s.NetProfit))
		if s.ROI < 0 {
			output.Loss("%s", line)
		} else {
			output.Gain("%s", line)
		}
	}

	if len(report.Errors) > 0 {
		output.Println()
		for _, unitErr := range report.Errors {
			output.Warning("%s/%s failed: %s", unitErr.Unit.Ticker, unitErr.Unit.ModelID, unitErr.Msg)
		}
	}
}
