// Package config provides configuration management for the simulator.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/costs"
	"github.com/yannicklin/share-investment-strategy-model-sub000/internal/errors"
)

// HoldUnit is the unit of a minimum holding period. Day units count trading
// days (bars); week, month, quarter and year are calendar units.
type HoldUnit string

const (
	HoldDays     HoldUnit = "day"
	HoldWeeks    HoldUnit = "week"
	HoldMonths   HoldUnit = "month"
	HoldQuarters HoldUnit = "quarter"
	HoldYears    HoldUnit = "year"
)

// HoldPeriod is a minimum holding period with its unit.
type HoldPeriod struct {
	Value int      `mapstructure:"value"`
	Unit  HoldUnit `mapstructure:"unit"`
}

// Simulation is the fully resolved configuration for one backtest run. The
// market preset has already been folded in: the engine never sees a market
// name, only the resulting fee profile, tax policy and settlement lag.
type Simulation struct {
	Market            string
	FeeProfile        costs.FeeProfile
	TaxPolicy         costs.TaxPolicy
	AnnualIncome      decimal.Decimal
	InitialCapital    decimal.Decimal
	StopLossPct       float64
	TakeProfitPct     float64 // zero disables take-profit
	MinHold           HoldPeriod
	SettlementLagDays int
	RiskBufferPct     float64
	TieBreakerModelID string
	WarmUpBars        int
	Models            []string
}

// Scan holds batch-scan settings.
type Scan struct {
	Workers  int      `mapstructure:"workers"`
	TopN     int      `mapstructure:"top_n"`
	Tickers  []string `mapstructure:"tickers"`
	SaveCSV  string   `mapstructure:"save_csv"`
	Progress bool     `mapstructure:"progress"`
}

// Config is the application configuration loaded from disk.
type Config struct {
	Simulation Simulation
	Scan       Scan
	DataDir    string
}

// fileSimulation mirrors the TOML shape before market resolution.
type fileSimulation struct {
	Market            string     `mapstructure:"market"`
	CostProfile       string     `mapstructure:"cost_profile"`
	AnnualIncome      float64    `mapstructure:"annual_income"`
	InitialCapital    float64    `mapstructure:"initial_capital"`
	StopLossPct       float64    `mapstructure:"stop_loss_pct"`
	TakeProfitPct     float64    `mapstructure:"take_profit_pct"`
	MinHold           HoldPeriod `mapstructure:"min_hold"`
	SettlementLag     *int       `mapstructure:"settlement_lag_days"` // nil means "use the market preset"; 0 is a valid T+0 override
	RiskBufferPct     float64    `mapstructure:"risk_buffer_pct"`
	TieBreakerModelID string     `mapstructure:"tie_breaker_model"`
	WarmUpBars        int        `mapstructure:"warm_up_bars"`
	Models            []string   `mapstructure:"models"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/strategy-sim"
	}
	return filepath.Join(home, ".config", "strategy-sim")
}

// Load reads configuration from the given directory (TOML), applies the
// market preset and environment overrides, and validates. A missing config
// file yields the defaults for the chosen market.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("simulation.market", "ASX")
	v.SetDefault("simulation.annual_income", 80000.0)
	v.SetDefault("simulation.initial_capital", 10000.0)
	v.SetDefault("simulation.stop_loss_pct", 0.10)
	v.SetDefault("simulation.risk_buffer_pct", 0.005)
	v.SetDefault("simulation.warm_up_bars", 90)
	v.SetDefault("simulation.min_hold.value", 5)
	v.SetDefault("simulation.min_hold.unit", string(HoldDays))
	v.SetDefault("simulation.models", []string{"sma-crossover"})
	v.SetDefault("scan.workers", 4)
	v.SetDefault("scan.top_n", 10)
	v.SetDefault("scan.progress", true)
	v.SetDefault("data_dir", configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config.toml")
		}
	}

	var raw struct {
		Simulation fileSimulation `mapstructure:"simulation"`
		Scan       Scan           `mapstructure:"scan"`
		DataDir    string         `mapstructure:"data_dir"`
	}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, errors.Wrap(err, "parsing config.toml")
	}

	applyEnvOverrides(&raw.Simulation)

	sim, err := resolveSimulation(raw.Simulation)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Simulation: *sim,
		Scan:       raw.Scan,
		DataDir:    raw.DataDir,
	}

	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(sim *fileSimulation) {
	if v := os.Getenv("SIM_MARKET"); v != "" {
		sim.Market = v
	}
	if v := os.Getenv("SIM_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			sim.InitialCapital = f
		}
	}
	if v := os.Getenv("SIM_ANNUAL_INCOME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			sim.AnnualIncome = f
		}
	}
	if v := os.Getenv("SIM_MODELS"); v != "" {
		sim.Models = strings.Split(v, ",")
	}
}

// resolveSimulation folds the market preset into a Simulation and lays file
// values over the preset defaults.
func resolveSimulation(raw fileSimulation) (*Simulation, error) {
	preset, err := MarketPreset(raw.Market)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{
		Market:            strings.ToUpper(raw.Market),
		FeeProfile:        preset.FeeProfile,
		TaxPolicy:         preset.TaxPolicy,
		AnnualIncome:      decimal.NewFromFloat(raw.AnnualIncome),
		InitialCapital:    decimal.NewFromFloat(raw.InitialCapital),
		StopLossPct:       raw.StopLossPct,
		TakeProfitPct:     raw.TakeProfitPct,
		MinHold:           raw.MinHold,
		SettlementLagDays: preset.SettlementLagDays,
		RiskBufferPct:     raw.RiskBufferPct,
		TieBreakerModelID: raw.TieBreakerModelID,
		WarmUpBars:        raw.WarmUpBars,
		Models:            raw.Models,
	}

	if raw.CostProfile != "" {
		profile, err := CostProfile(raw.CostProfile)
		if err != nil {
			return nil, err
		}
		sim.FeeProfile = profile
	}
	if raw.SettlementLag != nil {
		sim.SettlementLagDays = *raw.SettlementLag
	}

	return sim, nil
}

// Validate fails fast with a ConfigError before any simulation starts.
func (s *Simulation) Validate() error {
	if !s.InitialCapital.IsPositive() {
		return errors.NewConfigError("initial_capital", s.InitialCapital, "must be positive")
	}
	if s.StopLossPct <= 0 || s.StopLossPct >= 1 {
		return errors.NewConfigError("stop_loss_pct", s.StopLossPct, "must be a fraction in (0, 1)")
	}
	if s.TakeProfitPct < 0 || s.TakeProfitPct >= 10 {
		return errors.NewConfigError("take_profit_pct", s.TakeProfitPct, "must be a non-negative fraction")
	}
	if s.SettlementLagDays < 0 {
		return errors.NewConfigError("settlement_lag_days", s.SettlementLagDays, "must be non-negative")
	}
	if s.RiskBufferPct < 0 {
		return errors.NewConfigError("risk_buffer_pct", s.RiskBufferPct, "must be non-negative")
	}
	if s.WarmUpBars < 0 {
		return errors.NewConfigError("warm_up_bars", s.WarmUpBars, "must be non-negative")
	}
	if s.MinHold.Value < 0 {
		return errors.NewConfigError("min_hold.value", s.MinHold.Value, "must be non-negative")
	}
	switch s.MinHold.Unit {
	case HoldDays, HoldWeeks, HoldMonths, HoldQuarters, HoldYears:
	case "":
		if s.MinHold.Value > 0 {
			return errors.NewConfigError("min_hold.unit", s.MinHold.Unit, "required when min_hold.value is set")
		}
	default:
		return errors.NewConfigError("min_hold.unit", s.MinHold.Unit, "must be day, week, month, quarter or year")
	}
	for _, b := range s.TaxPolicy.Brackets {
		if b.Rate < 0 || b.Rate >= 1 {
			return errors.NewConfigError("tax_bracket_rate", b.Rate, "must be a fraction in [0, 1)")
		}
	}
	if len(s.Models) == 0 {
		return errors.NewConfigError("models", s.Models, "at least one model is required")
	}
	if len(s.Models) > 1 && len(s.Models)%2 == 0 && s.TieBreakerModelID == "" {
		return errors.NewConfigError("tie_breaker_model", "", "required for an even number of models")
	}
	return nil
}

// MarginalTaxRate is a convenience for the configured income.
func (s *Simulation) MarginalTaxRate() float64 {
	return s.TaxPolicy.MarginalRate(s.AnnualIncome)
}
