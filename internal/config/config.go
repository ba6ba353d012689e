// Package config handles configuration management with validation
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"gridsim/internal/engine"
	"gridsim/internal/risk"
	apperrors "gridsim/pkg/errors"
)

// Config represents the complete configuration structure
type Config struct {
	Strategy   StrategyConfig   `yaml:"strategy"`
	Risk       RiskConfig       `yaml:"risk"`
	Simulation SimulationConfig `yaml:"simulation"`
	Store      StoreConfig      `yaml:"store"`
	System     SystemConfig     `yaml:"system"`
}

// StrategyConfig contains the grid strategy parameters
type StrategyConfig struct {
	Symbol          string  `yaml:"symbol"`
	LowerBound      float64 `yaml:"lower_bound"`
	UpperBound      float64 `yaml:"upper_bound"`
	GridLevels      int     `yaml:"grid_levels"`
	QuantityPerGrid float64 `yaml:"quantity_per_grid"`
}

// RiskConfig contains the risk limit settings
type RiskConfig struct {
	MaxPositionSize  float64 `yaml:"max_position_size"`
	StopLossPct      float64 `yaml:"stop_loss_pct"`
	TakeProfitPct    float64 `yaml:"take_profit_pct"`
	MaxOpenOrders    int     `yaml:"max_open_orders"`
	MaxTotalExposure float64 `yaml:"max_total_exposure"`
}

// SimulationConfig selects the price source and replay behavior
type SimulationConfig struct {
	Source          string  `yaml:"source"` // synthetic, csv or binance
	Ticks           int     `yaml:"ticks"`
	Seed            int64   `yaml:"seed"`
	CSVPath         string  `yaml:"csv_path"`
	BinanceInterval string  `yaml:"binance_interval"`
	PacingTPS       float64 `yaml:"pacing_tps"` // 0 disables pacing
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	StateFile       string  `yaml:"state_file"` // optional snapshot destination
}

// StoreConfig contains the result database settings
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SystemConfig contains system settings
type SystemConfig struct {
	LogLevel string `yaml:"log_level"`
}

var validSources = []string{"synthetic", "csv", "binance"}
var validLogLevels = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// LoadConfig loads configuration from a YAML file with environment variable
// expansion, then validates it.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Simulation.Source == "" {
		c.Simulation.Source = "synthetic"
	}
	if c.Simulation.Ticks <= 0 {
		c.Simulation.Ticks = 100
	}
	if c.Simulation.BinanceInterval == "" {
		c.Simulation.BinanceInterval = "1m"
	}
	if c.System.LogLevel == "" {
		c.System.LogLevel = "INFO"
	}
	if c.Store.Enabled && c.Store.Path == "" {
		c.Store.Path = "data"
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateStrategy(); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.validateRisk(); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.validateSimulation(); err != nil {
		errors = append(errors, err.Error())
	}
	if err := c.validateSystem(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}
	return nil
}

func (c *Config) validateStrategy() error {
	if c.Strategy.Symbol == "" {
		return apperrors.ConfigError{Field: "strategy.symbol", Message: "symbol is required"}
	}
	if c.Strategy.LowerBound <= 0 {
		return apperrors.ConfigError{
			Field: "strategy.lower_bound", Value: c.Strategy.LowerBound,
			Message: "must be positive",
		}
	}
	if c.Strategy.UpperBound <= c.Strategy.LowerBound {
		return apperrors.ConfigError{
			Field: "strategy.upper_bound", Value: c.Strategy.UpperBound,
			Message: "must be greater than lower_bound",
		}
	}
	if c.Strategy.GridLevels < 2 {
		return apperrors.ConfigError{
			Field: "strategy.grid_levels", Value: c.Strategy.GridLevels,
			Message: "must be at least 2",
		}
	}
	if c.Strategy.QuantityPerGrid <= 0 {
		return apperrors.ConfigError{
			Field: "strategy.quantity_per_grid", Value: c.Strategy.QuantityPerGrid,
			Message: "must be positive",
		}
	}
	return nil
}

func (c *Config) validateRisk() error {
	checks := []struct {
		field string
		value float64
	}{
		{"risk.max_position_size", c.Risk.MaxPositionSize},
		{"risk.stop_loss_pct", c.Risk.StopLossPct},
		{"risk.take_profit_pct", c.Risk.TakeProfitPct},
		{"risk.max_total_exposure", c.Risk.MaxTotalExposure},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return apperrors.ConfigError{Field: check.field, Value: check.value, Message: "must be positive"}
		}
	}
	if c.Risk.MaxOpenOrders <= 0 {
		return apperrors.ConfigError{
			Field: "risk.max_open_orders", Value: c.Risk.MaxOpenOrders,
			Message: "must be positive",
		}
	}
	return nil
}

func (c *Config) validateSimulation() error {
	if !contains(validSources, c.Simulation.Source) {
		return apperrors.ConfigError{
			Field: "simulation.source", Value: c.Simulation.Source,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validSources, ", ")),
		}
	}
	if c.Simulation.Source == "csv" && c.Simulation.CSVPath == "" {
		return apperrors.ConfigError{
			Field:   "simulation.csv_path",
			Message: "required when source is csv",
		}
	}
	if c.Simulation.PacingTPS < 0 {
		return apperrors.ConfigError{
			Field: "simulation.pacing_tps", Value: c.Simulation.PacingTPS,
			Message: "must not be negative",
		}
	}
	return nil
}

func (c *Config) validateSystem() error {
	if !contains(validLogLevels, strings.ToUpper(c.System.LogLevel)) {
		return apperrors.ConfigError{
			Field: "system.log_level", Value: c.System.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogLevels, ", ")),
		}
	}
	return nil
}

// EngineConfig converts the YAML strategy and risk sections into the
// decimal-based engine configuration.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Symbol:          c.Strategy.Symbol,
		LowerBound:      decimal.NewFromFloat(c.Strategy.LowerBound),
		UpperBound:      decimal.NewFromFloat(c.Strategy.UpperBound),
		GridLevels:      c.Strategy.GridLevels,
		QuantityPerGrid: decimal.NewFromFloat(c.Strategy.QuantityPerGrid),
		Risk: risk.Limits{
			MaxPositionSize:  decimal.NewFromFloat(c.Risk.MaxPositionSize),
			StopLossPct:      decimal.NewFromFloat(c.Risk.StopLossPct),
			TakeProfitPct:    decimal.NewFromFloat(c.Risk.TakeProfitPct),
			MaxOpenOrders:    c.Risk.MaxOpenOrders,
			MaxTotalExposure: decimal.NewFromFloat(c.Risk.MaxTotalExposure),
		},
	}
}

// Timeout returns the replay timeout, zero meaning no limit.
func (c *Config) Timeout() time.Duration {
	if c.Simulation.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Simulation.TimeoutSeconds) * time.Second
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
