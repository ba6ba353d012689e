package engine

import (
	"github.com/shopspring/decimal"

	"gridsim/internal/core"
	"gridsim/internal/grid"
	"gridsim/internal/risk"
)

// SnapshotConfig is the configuration section of a state snapshot.
type SnapshotConfig struct {
	Symbol          string            `json:"symbol"`
	LowerBound      decimal.Decimal   `json:"lower_bound"`
	UpperBound      decimal.Decimal   `json:"upper_bound"`
	GridLevels      int               `json:"grid_levels"`
	QuantityPerGrid decimal.Decimal   `json:"quantity_per_grid"`
	GridSpacing     decimal.Decimal   `json:"grid_spacing"`
	GridPrices      []decimal.Decimal `json:"grid_prices"`
	Risk            risk.Limits       `json:"risk_control"`
	Active          bool              `json:"is_active"`
	CurrentPrice    decimal.Decimal   `json:"current_price"`
	HasPrice        bool              `json:"has_price"`
}

// Snapshot is the full structured state of a strategy engine. It is consumed
// by external persistence collaborators; the engine itself performs no file
// I/O. Restoring from a snapshot reproduces an identical engine.
type Snapshot struct {
	Config     SnapshotConfig  `json:"config"`
	Orders     []core.Order    `json:"orders"`
	Positions  []core.Position `json:"positions"`
	Statistics core.Statistics `json:"statistics"`
}

// ExportState captures the engine state as a snapshot of owned value copies.
func (e *Engine) ExportState() Snapshot {
	return Snapshot{
		Config: SnapshotConfig{
			Symbol:          e.cfg.Symbol,
			LowerBound:      e.cfg.LowerBound,
			UpperBound:      e.cfg.UpperBound,
			GridLevels:      e.cfg.GridLevels,
			QuantityPerGrid: e.cfg.QuantityPerGrid,
			GridSpacing:     e.ladder.Spacing(),
			GridPrices:      e.ladder.Points(),
			Risk:            e.cfg.Risk,
			Active:          e.active,
			CurrentPrice:    e.lastPrice,
			HasPrice:        e.hasPrice,
		},
		Orders:     e.book.All(),
		Positions:  e.ledger.All(),
		Statistics: e.Statistics(),
	}
}

// Restore reconstructs an engine from an exported snapshot. The ladder is
// recomputed from the bounds; orders, positions and counters are restored
// verbatim.
func Restore(snap Snapshot, logger core.ILogger) (*Engine, error) {
	cfg := Config{
		Symbol:          snap.Config.Symbol,
		LowerBound:      snap.Config.LowerBound,
		UpperBound:      snap.Config.UpperBound,
		GridLevels:      snap.Config.GridLevels,
		QuantityPerGrid: snap.Config.QuantityPerGrid,
		Risk:            snap.Config.Risk,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ladder, err := grid.Compute(cfg.LowerBound, cfg.UpperBound, cfg.GridLevels)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:           cfg,
		ladder:        ladder,
		book:          NewOrderBook(),
		ledger:        NewPositionLedger(),
		logger:        logger.WithField("component", "strategy_engine").WithField("symbol", cfg.Symbol),
		active:        snap.Config.Active,
		lastPrice:     snap.Config.CurrentPrice,
		hasPrice:      snap.Config.HasPrice,
		totalTrades:   snap.Statistics.TotalTrades,
		winningTrades: snap.Statistics.WinningTrades,
		losingTrades:  snap.Statistics.LosingTrades,
		totalProfit:   snap.Statistics.TotalProfit,
	}
	e.book.Restore(snap.Orders)
	e.ledger.Restore(snap.Positions)
	return e, nil
}
