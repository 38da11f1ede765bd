package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/engine"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/logging"
	"github.com/yannicklin/share-investment-strategy-model-sub000/pkg/utils"
)

func newBacktestCmd(app *App) *cobra.Command {
	var (
		modelsFlag []string
		showChart  bool
	)

	cmd := &cobra.Command{
		Use:   "backtest <ticker>",
		Short: "Backtest the configured strategy against one ticker",
		Long: `Run the full simulation for a single ticker: fee and tax modelling,
hurdle-gated entries, stop-losses, settlement lag and forced liquidation
at period end. Prints the trade ledger and summary metrics.`,
		Example: `  sim backtest BHP.AX
  sim backtest BHP.AX --models sma-crossover,momentum
  sim backtest BHP.AX --chart --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ticker := args[0]

			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			cfg := app.Config.Simulation
			if len(modelsFlag) > 0 {
				cfg.Models = modelsFlag
			}

			bars, err := app.Store.GetBars(cmd.Context(), ticker)
			if err != nil {
				return err
			}
			predictors, err := app.Registry.NewSet(cfg.Models)
			if err != nil {
				return err
			}

			result, err := engine.Run(ticker, bars, predictors, &cfg)
			if err != nil {
				return err
			}
			logging.LogRun(app.Logger, ticker, result.Summary.Trades, result.Summary.ROI)

			if output.IsJSON() {
				return output.JSON(result)
			}

			printBacktest(output, result, cfg.SettlementLagDays)
			if showChart {
				output.Println()
				output.Printf("%s", equityCurveASCII(result.EquityCurve, 60, 12))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelsFlag, "models", nil, "override configured models (comma separated)")
	cmd.Flags().BoolVar(&showChart, "chart", false, "render the equity curve as an ASCII chart")
	return cmd
}

func printBacktest(output *Output, result *engine.Result, settlementLagDays int) {
	output.Println()
	color.Cyan("Backtest %s  [%s]", result.Ticker, strings.Join(result.ModelIDs, ", "))
	output.Println(strings.Repeat("─", 72))

	if len(result.Ledger) == 0 {
		output.Dim("No trades executed")
	} else {
		output.Printf("%-12s %-12s %10s %10s %8s %12s %-14s\n",
			"Entry", "Exit", "Buy", "Sell", "Qty", "Net P/L", "Reason")
		for _, trade := range result.Ledger {
			line := fmt.Sprintf("%-12s %-12s %10s %10s %8s %12s %-14s",
				trade.EntryDate.Format("2006-01-02"),
				trade.ExitDate.Format("2006-01-02"),
				trade.EntryPrice.StringFixed(2),
				trade.ExitPrice.StringFixed(2),
				utils.FormatQuantity(trade.Quantity),
				utils.FormatPnL(trade.NetProfit),
				trade.ExitReason)
			if trade.NetProfit.IsNegative() {
				output.Loss("%s", line)
			} else {
				output.Gain("%s", line)
			}
		}
	}

	summary := result.Summary
	output.Println(strings.Repeat("─", 72))
	if len(result.EquityCurve) > 0 {
		first := result.EquityCurve[0].Date
		last := result.EquityCurve[len(result.EquityCurve)-1].Date
		days := utils.TradingDaysBetween(first, last) + 1
		output.Printf("  Period:           %s to %s (%d trading days)\n",
			first.Format("2006-01-02"), last.Format("2006-01-02"), days)
	}
	if settlementLagDays > 0 && len(result.Ledger) > 0 {
		lastExit := result.Ledger[len(result.Ledger)-1].ExitDate
		settles := utils.AddTradingDays(lastExit, settlementLagDays)
		output.Printf("  Final settlement: %s (T+%d)\n",
			settles.Format("2006-01-02"), settlementLagDays)
	}
	output.Printf("  Initial capital:  %s\n", utils.FormatMoney(summary.InitialCapital))
	output.Printf("  Final equity:     %s\n", utils.FormatMoney(summary.FinalEquity))
	output.Printf("  Net profit:       %s\n", utils.FormatPnL(summary.NetProfit))
	output.Printf("  ROI:              %s\n", utils.FormatPercent(summary.ROI))
	output.Printf("  Annualized:       %s\n", utils.FormatPercent(summary.AnnualizedReturn))
	output.Printf("  Trades:           %d (%d won / %d lost)\n", summary.Trades, summary.Wins, summary.Losses)
	if summary.Trades > 0 {
		output.Printf("  Win rate:         %.1f%%\n", summary.WinRate*100)
		output.Printf("  Avg profit/trade: %s\n", utils.FormatPnL(summary.AvgProfitPerTrade))
	}
	output.Printf("  Max drawdown:     %s\n", utils.FormatPercent(-summary.MaxDrawdown))
	output.Printf("  Sharpe ratio:     %.2f\n", summary.SharpeRatio)
}
