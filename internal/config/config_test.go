package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, uint64(100), cfg.Seed)
	assert.Equal(t, 50000, cfg.PortfolioSize)
	assert.InDelta(t, 200.0, cfg.BaseExpense, 0.0001)
	assert.InDelta(t, 1.05, cfg.MarketPriceFactor, 0.0001)
	assert.InDelta(t, 0.95, cfg.PreviousPriceFactor, 0.0001)
	assert.Equal(t, []float64{0.9, 1.0, 1.1, 1.2}, cfg.PriceGrid)
	assert.Equal(t, "portfolio", cfg.OptimizationMode)
	assert.InDelta(t, 3.0, cfg.ControlK, 0.0001)
	assert.Equal(t, "base", cfg.Strategy)
	assert.True(t, cfg.Storage.UseMemory)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Server.RunInterval)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
seed: 7
portfolio_size: 1000
strategy: aggressive
optimization_mode: per_policy
price_grid: [0.8, 1.0, 1.3]
storage:
  use_memory: false
  postgres_dsn: postgres://localhost:5432/pricing
server:
  addr: ":9090"
  run_interval: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 1000, cfg.PortfolioSize)
	assert.Equal(t, "aggressive", cfg.Strategy)
	assert.Equal(t, "per_policy", cfg.OptimizationMode)
	assert.Equal(t, []float64{0.8, 1.0, 1.3}, cfg.PriceGrid)
	assert.False(t, cfg.Storage.UseMemory)
	assert.Equal(t, "postgres://localhost:5432/pricing", cfg.Storage.PostgresDSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.RunInterval)

	// Unset fields keep their defaults.
	assert.InDelta(t, 1.05, cfg.MarketPriceFactor, 0.0001)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative portfolio size", "portfolio_size: -5"},
		{"zero portfolio size", "portfolio_size: 0"},
		{"empty price grid", "price_grid: []"},
		{"non-positive grid point", "price_grid: [1.0, 0]"},
		{"unknown strategy", "strategy: yolo"},
		{"unknown optimization mode", "optimization_mode: quantum"},
		{"negative base expense", "base_expense: -1"},
		{"zero control k", "control_k: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestStrategyConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyBase, cfg.StrategyConfig())

	cfg.Strategy = domain.StrategyAggressiveID
	assert.Equal(t, domain.StrategyAggressive, cfg.StrategyConfig())

	cfg.Strategy = domain.StrategyConservativeID
	assert.Equal(t, domain.StrategyConservative, cfg.StrategyConfig())
}

func TestValidateStrategy(t *testing.T) {
	for _, s := range domain.AllStrategies() {
		assert.NoError(t, ValidateStrategy(s), "preset %s", s.StrategyID)
	}

	broken := domain.StrategyBase
	broken.MinCollar = 0.1
	assert.ErrorIs(t, ValidateStrategy(broken), ErrInvalidConfig)

	broken = domain.StrategyBase
	broken.MaxDiscount = 1.5
	assert.ErrorIs(t, ValidateStrategy(broken), ErrInvalidConfig)

	broken = domain.StrategyBase
	broken.MaxCap = 0
	assert.ErrorIs(t, ValidateStrategy(broken), ErrInvalidConfig)
}

func TestValidateScenario(t *testing.T) {
	for _, s := range domain.AllScenarios() {
		assert.NoError(t, ValidateScenario(s), "preset %s", s.ScenarioID)
	}

	broken := domain.ScenarioConfigBase
	broken.DemandShock = 0
	assert.ErrorIs(t, ValidateScenario(broken), ErrInvalidConfig)
}
