package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gridsim/pkg/errors"
)

const validYAML = `
strategy:
  symbol: "BTCUSDT"
  lower_bound: 30000
  upper_bound: 35000
  grid_levels: 10
  quantity_per_grid: 0.1

risk:
  max_position_size: 100
  stop_loss_pct: 5
  take_profit_pct: 10
  max_open_orders: 20
  max_total_exposure: 10000

simulation:
  source: synthetic
  ticks: 200
  seed: 42

store:
  enabled: false

system:
  log_level: INFO
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Strategy.Symbol)
	assert.Equal(t, 10, cfg.Strategy.GridLevels)
	assert.Equal(t, "synthetic", cfg.Simulation.Source)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 20, cfg.Risk.MaxOpenOrders)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "strategy: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	t.Setenv("GRIDSIM_SYMBOL", "ETHUSDT")

	content := `
strategy:
  symbol: "${GRIDSIM_SYMBOL}"
  lower_bound: 100
  upper_bound: 200
  grid_levels: 5
  quantity_per_grid: 1
risk:
  max_position_size: 10
  stop_loss_pct: 5
  take_profit_pct: 10
  max_open_orders: 20
  max_total_exposure: 10000
`
	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Strategy.Symbol)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	content := `
strategy:
  symbol: "BTCUSDT"
  lower_bound: 100
  upper_bound: 200
  grid_levels: 5
  quantity_per_grid: 1
risk:
  max_position_size: 10
  stop_loss_pct: 5
  take_profit_pct: 10
  max_open_orders: 20
  max_total_exposure: 10000
`
	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "synthetic", cfg.Simulation.Source)
	assert.Equal(t, 100, cfg.Simulation.Ticks)
	assert.Equal(t, "1m", cfg.Simulation.BinanceInterval)
	assert.Equal(t, "INFO", cfg.System.LogLevel)
}

func TestValidate_Strategy(t *testing.T) {
	base, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg := *base
	cfg.Strategy.Symbol = ""
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Strategy.LowerBound = 0
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Strategy.UpperBound = cfg.Strategy.LowerBound
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Strategy.GridLevels = 1
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Strategy.QuantityPerGrid = -1
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
}

func TestValidate_Risk(t *testing.T) {
	base, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg := *base
	cfg.Risk.StopLossPct = 0
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Risk.MaxOpenOrders = -1
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
}

func TestValidate_Simulation(t *testing.T) {
	base, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg := *base
	cfg.Simulation.Source = "tape"
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Simulation.Source = "csv"
	cfg.Simulation.CSVPath = ""
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.Simulation.PacingTPS = -1
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
}

func TestValidate_System(t *testing.T) {
	base, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg := *base
	cfg.System.LogLevel = "VERBOSE"
	assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)

	cfg = *base
	cfg.System.LogLevel = "debug"
	assert.NoError(t, cfg.Validate(), "level comparison is case insensitive")
}

func TestEngineConfig_ConvertsToDecimals(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	ec := cfg.EngineConfig()
	assert.Equal(t, "BTCUSDT", ec.Symbol)
	assert.True(t, ec.LowerBound.Equal(decimal.NewFromInt(30000)))
	assert.True(t, ec.UpperBound.Equal(decimal.NewFromInt(35000)))
	assert.Equal(t, 10, ec.GridLevels)
	assert.True(t, ec.QuantityPerGrid.Equal(decimal.NewFromFloat(0.1)))
	assert.True(t, ec.Risk.StopLossPct.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 20, ec.Risk.MaxOpenOrders)
	assert.NoError(t, ec.Validate())
}

func TestTimeout(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Zero(t, cfg.Timeout())

	cfg.Simulation.TimeoutSeconds = 30
	assert.Equal(t, "30s", cfg.Timeout().String())
}
