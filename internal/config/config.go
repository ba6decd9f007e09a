// Package config loads and validates engine configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"pricing-lab/internal/domain"
)

// Config errors.
var (
	// ErrInvalidConfig is returned for missing or out-of-range settings.
	// Configuration errors are fatal: the run must not start with them.
	ErrInvalidConfig = errors.New("invalid config")
)

var validate = validator.New()

// Config holds all engine settings. Every field carries a documented default
// and a validated range; a config that fails validation aborts the run.
type Config struct {
	// Seed for every stochastic stage. Runs with the same seed are
	// bit-reproducible.
	Seed uint64 `yaml:"seed" default:"100"`

	// PortfolioSize is the number of synthetic policies to generate when no
	// external portfolio is supplied.
	PortfolioSize int `yaml:"portfolio_size" default:"50000" validate:"gt=0"`

	// BaseExpense is the per-policy expense before the strategy multiplier.
	BaseExpense float64 `yaml:"base_expense" default:"200" validate:"gte=0"`

	// MarketPriceFactor sets the reference market price as a multiple of the
	// base price.
	MarketPriceFactor float64 `yaml:"market_price_factor" default:"1.05" validate:"gt=0"`

	// PreviousPriceFactor defines the prior-year price as a discount off the
	// base price when no external previous price is available.
	PreviousPriceFactor float64 `yaml:"previous_price_factor" default:"0.95" validate:"gt=0"`

	// PriceGrid lists candidate price multipliers applied to the base price.
	// An empty grid is a configuration error.
	PriceGrid []float64 `yaml:"price_grid" default:"[0.9,1.0,1.1,1.2]" validate:"min=1,dive,gt=0"`

	// OptimizationMode selects per-policy vector optimization or a single
	// shared portfolio price.
	OptimizationMode string `yaml:"optimization_mode" default:"portfolio" validate:"oneof=portfolio per_policy"`

	// ControlK is the Shewhart control-limit width in standard deviations.
	ControlK float64 `yaml:"control_k" default:"3" validate:"gt=0"`

	// Strategy selects the pricing strategy preset.
	Strategy string `yaml:"strategy" default:"base" validate:"oneof=base aggressive conservative"`

	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// StorageConfig selects the storage backends.
type StorageConfig struct {
	UseMemory     bool   `yaml:"use_memory" default:"true"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr        string        `yaml:"addr" default:":8080"`
	RunInterval time.Duration `yaml:"run_interval" default:"10m"`
}

// Default returns a Config with all defaults applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config file, applies defaults and validates ranges.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks all ranges, including the selected strategy preset.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return ValidateStrategy(c.StrategyConfig())
}

// StrategyConfig resolves the configured strategy preset.
func (c *Config) StrategyConfig() domain.StrategyConfig {
	switch c.Strategy {
	case domain.StrategyAggressiveID:
		return domain.StrategyAggressive
	case domain.StrategyConservativeID:
		return domain.StrategyConservative
	default:
		return domain.StrategyBase
	}
}

// ValidateStrategy checks the numeric ranges of a pricing strategy:
// max_cap > 0, min_collar < 0, max_discount in [0,1], multipliers > 0.
func ValidateStrategy(s domain.StrategyConfig) error {
	switch {
	case s.ProfitMargin < 0:
		return fmt.Errorf("%w: strategy %s: profit_margin %.3f < 0", ErrInvalidConfig, s.StrategyID, s.ProfitMargin)
	case s.MaxCap <= 0:
		return fmt.Errorf("%w: strategy %s: max_cap %.3f must be > 0", ErrInvalidConfig, s.StrategyID, s.MaxCap)
	case s.MinCollar >= 0:
		return fmt.Errorf("%w: strategy %s: min_collar %.3f must be < 0", ErrInvalidConfig, s.StrategyID, s.MinCollar)
	case s.MaxDiscount < 0 || s.MaxDiscount > 1:
		return fmt.Errorf("%w: strategy %s: max_discount %.3f outside [0,1]", ErrInvalidConfig, s.StrategyID, s.MaxDiscount)
	case s.UnderwritingStrictness <= 0:
		return fmt.Errorf("%w: strategy %s: underwriting_strictness %.3f must be > 0", ErrInvalidConfig, s.StrategyID, s.UnderwritingStrictness)
	case s.DemandShockFactor <= 0:
		return fmt.Errorf("%w: strategy %s: demand_shock_factor %.3f must be > 0", ErrInvalidConfig, s.StrategyID, s.DemandShockFactor)
	case s.ExpenseMultiplier <= 0:
		return fmt.Errorf("%w: strategy %s: expense_multiplier %.3f must be > 0", ErrInvalidConfig, s.StrategyID, s.ExpenseMultiplier)
	}
	return nil
}

// ValidateScenario checks that all shock multipliers are positive.
func ValidateScenario(s domain.ScenarioConfig) error {
	if s.ClaimsInflation <= 0 || s.DemandShock <= 0 || s.ExpenseChange <= 0 {
		return fmt.Errorf("%w: scenario %s: shock factors must be > 0", ErrInvalidConfig, s.ScenarioID)
	}
	return nil
}
