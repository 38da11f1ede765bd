package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage stored price history",
	}
	cmd.AddCommand(newDataImportCmd(app))
	cmd.AddCommand(newDataListCmd(app))
	return cmd
}

func newDataImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <ticker> <csv-file>",
		Short: "Import price history from a CSV file",
		Long: `Import daily price bars for a ticker. The CSV must carry a header of
date,open,high,low,close,volume; open, high, low and volume may be empty
for close-only sources. Existing bars for the same dates are replaced.`,
		Example: `  sim data import BHP.AX bhp-2024.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ticker, path := args[0], args[1]
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			n, err := app.Store.ImportCSV(cmd.Context(), ticker, f)
			if err != nil {
				return fmt.Errorf("import failed after %d bars: %w", n, err)
			}

			app.Logger.Info().Str("ticker", ticker).Int("bars", n).Msg("Price history imported")
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"ticker": ticker, "bars": n})
			}
			output.Success("Imported %d bars for %s", n, ticker)
			return nil
		},
	}
}

func newDataListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tickers with stored price history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("data store unavailable")
			}

			tickers, err := app.Store.ListTickers(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(tickers)
			}
			if len(tickers) == 0 {
				output.Dim("No price history stored")
				return nil
			}
			for _, ticker := range tickers {
				output.Println(ticker)
			}
			return nil
		},
	}
}
