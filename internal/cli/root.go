// Package cli provides the command-line interface for the simulator.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/config"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/logging"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/predictor"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    *store.SQLiteStore
	Registry *predictor.Registry
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: predictor.NewRegistry(),
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "sim.db")
	if cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, "sim.db")
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, data commands will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "sim",
		Short: "Share investment strategy simulator",
		Long: `sim backtests share trading strategies against historical prices.

It models real trading frictions: brokerage and clearing fees, capital
gains tax, settlement lag, stop-losses and minimum holding periods.
Multiple prediction models can vote on each day's action.

Use 'sim help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/strategy-sim)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newSuperStarsCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
	rootCmd.AddCommand(newDataCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{"version": Version})
			}
			output.Printf("sim %s\n", Version)
			return nil
		},
	}
}
