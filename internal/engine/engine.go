// Package engine implements the grid-trading strategy engine: grid
// initialization, price-driven fill detection, position lifecycle, risk-limit
// enforcement and statistics aggregation.
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gridsim/internal/core"
	"gridsim/internal/grid"
	"gridsim/internal/risk"
	apperrors "gridsim/pkg/errors"
)

// Config holds the construction parameters of a strategy engine.
type Config struct {
	Symbol          string          `json:"symbol"`
	LowerBound      decimal.Decimal `json:"lower_bound"`
	UpperBound      decimal.Decimal `json:"upper_bound"`
	GridLevels      int             `json:"grid_levels"`
	QuantityPerGrid decimal.Decimal `json:"quantity_per_grid"`
	Risk            risk.Limits     `json:"risk_control"`
}

// Validate rejects invalid construction parameters.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return apperrors.ConfigError{Field: "symbol", Value: c.Symbol, Message: "must not be empty"}
	}
	if !c.LowerBound.IsPositive() {
		return apperrors.ConfigError{Field: "lower_bound", Value: c.LowerBound, Message: "must be positive"}
	}
	if c.LowerBound.GreaterThanOrEqual(c.UpperBound) {
		return apperrors.ConfigError{Field: "upper_bound", Value: c.UpperBound, Message: "must be greater than lower bound"}
	}
	if c.GridLevels < 1 {
		return apperrors.ConfigError{Field: "grid_levels", Value: c.GridLevels, Message: "must be at least 1"}
	}
	if !c.QuantityPerGrid.IsPositive() {
		return apperrors.ConfigError{Field: "quantity_per_grid", Value: c.QuantityPerGrid, Message: "must be positive"}
	}
	return c.Risk.Validate()
}

// Engine is a single-symbol grid strategy instance. It exclusively owns its
// order book and position ledger; all mutation flows through InitializeGrid,
// UpdatePrice and Stop. Execution is single-threaded and the engine carries no
// locks; a multi-strategy host must serialize calls per instance.
type Engine struct {
	cfg    Config
	ladder *grid.Ladder
	book   *OrderBook
	ledger *PositionLedger
	logger core.ILogger

	active    bool
	lastPrice decimal.Decimal
	hasPrice  bool

	totalTrades   int
	winningTrades int
	losingTrades  int
	totalProfit   decimal.Decimal
}

// New creates a strategy engine from validated configuration.
func New(cfg Config, logger core.ILogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ladder, err := grid.Compute(cfg.LowerBound, cfg.UpperBound, cfg.GridLevels)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:         cfg,
		ladder:      ladder,
		book:        NewOrderBook(),
		ledger:      NewPositionLedger(),
		logger:      logger.WithField("component", "strategy_engine").WithField("symbol", cfg.Symbol),
		totalProfit: decimal.Zero,
	}, nil
}

// Config returns the construction parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Ladder returns the grid ladder.
func (e *Engine) Ladder() *grid.Ladder {
	return e.ladder
}

// Active reports whether the strategy is running.
func (e *Engine) Active() bool {
	return e.active
}

// InitializeGrid places the initial ladder orders: buys on the points below
// the ladder midpoint, sells on the points above it. Creation stops silently
// once the open-order cap is reached. Returns copies of the created orders
// and activates the strategy. Calling it while active is a no-op.
func (e *Engine) InitializeGrid() []core.Order {
	if e.active {
		return nil
	}
	now := time.Now()
	mid := e.ladder.Len() / 2

	var created []core.Order
	for i := 0; i < e.ladder.Len(); i++ {
		if i == mid {
			continue
		}
		side := core.SideBuy
		if i > mid {
			side = core.SideSell
		}
		if o, ok := e.placeOrder(side, i, now); ok {
			created = append(created, *o)
		}
	}

	e.active = true
	e.logger.Info("grid initialized",
		"ladder_points", e.ladder.Len(),
		"orders", len(created),
		"spacing", e.ladder.Spacing())
	return created
}

// UpdatePrice processes a single observed price. Non-finite or non-positive
// prices are ignored and leave state unchanged. Within a tick, risk limits on
// open positions are evaluated first, then pending orders are swept for
// fills, then the grid is rebalanced around the fills.
func (e *Engine) UpdatePrice(price float64) {
	if !e.active {
		return
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		e.logger.Debug("ignoring invalid tick", "price", price)
		return
	}
	p := decimal.NewFromFloat(price)
	e.lastPrice = p
	e.hasPrice = true
	now := time.Now()

	if !e.ladder.Contains(p) {
		e.logger.Warn("price outside grid bounds",
			"price", p,
			"lower", e.ladder.LowerBound(),
			"upper", e.ladder.UpperBound())
	}

	e.enforceRiskLimits(p, now)
	fills := e.sweepFills(p, now)
	e.rebalance(fills, now)
}

// enforceRiskLimits force-closes open positions whose stop-loss or
// take-profit threshold is crossed by the incoming price.
func (e *Engine) enforceRiskLimits(p decimal.Decimal, now time.Time) {
	for _, pos := range e.ledger.OpenPositions() {
		switch {
		case e.cfg.Risk.StopLossBreached(pos.EntryPrice, p):
			pnl := e.closePosition(pos.ID, p, now)
			e.logger.Info("stop loss triggered",
				"position", pos.ID, "entry", pos.EntryPrice, "price", p, "pnl", pnl)
		case e.cfg.Risk.TakeProfitReached(pos.EntryPrice, p):
			pnl := e.closePosition(pos.ID, p, now)
			e.logger.Info("take profit triggered",
				"position", pos.ID, "entry", pos.EntryPrice, "price", p, "pnl", pnl)
		}
	}
}

// sweepFills fills every eligible pending order from the set that existed at
// tick start, closest to the tick price first (ties broken by order ID).
// Buy fills open positions, sell fills close the position bought one level
// below. Returns the filled orders in processing order.
func (e *Engine) sweepFills(p decimal.Decimal, now time.Time) []*core.Order {
	var eligible []*core.Order
	for _, o := range e.book.Pending() {
		if fillable(o, p) {
			eligible = append(eligible, o)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		di := eligible[i].Price.Sub(p).Abs()
		dj := eligible[j].Price.Sub(p).Abs()
		if !di.Equal(dj) {
			return di.LessThan(dj)
		}
		return eligible[i].ID < eligible[j].ID
	})

	for _, o := range eligible {
		e.book.Fill(o.ID, p, now)
		e.logger.Debug("order filled", "order", o.ID, "side", o.Side, "price", o.Price, "tick", p)
		if o.Side == core.SideBuy {
			e.openFromFill(o, now)
		} else {
			e.closeFromFill(o, now)
		}
	}
	return eligible
}

// fillable reports whether the tick price crosses the order threshold: a buy
// fills at or below its price, a sell at or above.
func fillable(o *core.Order, p decimal.Decimal) bool {
	if o.Side == core.SideBuy {
		return p.LessThanOrEqual(o.Price)
	}
	return p.GreaterThanOrEqual(o.Price)
}

// openFromFill opens a position for a filled buy order, entry at the order
// price. A violated position-size or exposure cap silently skips the open.
func (e *Engine) openFromFill(o *core.Order, now time.Time) {
	if e.cfg.Risk.PositionTooLarge(o.Quantity) {
		e.logger.Debug("position skipped: exceeds max position size", "order", o.ID, "qty", o.Quantity)
		return
	}
	add := o.Price.Mul(o.Quantity)
	if e.cfg.Risk.ExposureExceeded(e.ledger.TotalExposure(), add) {
		e.logger.Debug("position skipped: would exceed max total exposure", "order", o.ID, "notional", add)
		return
	}
	pos := e.ledger.Open(o.Price, o.Quantity, o.Level, now)
	e.logger.Debug("position opened", "position", pos.ID, "entry", pos.EntryPrice, "level", pos.EntryLevel)
}

// closeFromFill settles the position bought one grid level below a filled
// sell order. A sell with no matching open position settles nothing.
func (e *Engine) closeFromFill(o *core.Order, now time.Time) {
	pos, ok := e.ledger.FindByEntryLevel(o.Level - 1)
	if !ok {
		e.logger.Debug("sell fill without matching position", "order", o.ID, "level", o.Level)
		return
	}
	pnl := e.closePosition(pos.ID, o.Price, now)
	e.logger.Debug("position closed", "position", pos.ID, "exit", o.Price, "pnl", pnl)
}

// closePosition settles one position, books the realized PnL and bumps the
// trade counters. A break-even close counts as winning.
func (e *Engine) closePosition(id int64, exit decimal.Decimal, now time.Time) decimal.Decimal {
	pnl := e.ledger.Close(id, exit, now)
	e.totalProfit = e.totalProfit.Add(pnl)
	e.totalTrades++
	if pnl.IsNegative() {
		e.losingTrades++
	} else {
		e.winningTrades++
	}
	return pnl
}

// rebalance places the replacement orders for a tick's fills, in fill order:
// a sell one ladder point above each buy fill, a buy one point below each
// sell fill. Levels outside the ladder, occupied levels and capacity limits
// silently skip the placement. Replacement orders never fill within the tick
// that created them.
func (e *Engine) rebalance(fills []*core.Order, now time.Time) {
	for _, o := range fills {
		if o.Side == core.SideBuy {
			e.tryPlace(core.SideSell, o.Level+1, now)
		} else {
			e.tryPlace(core.SideBuy, o.Level-1, now)
		}
	}
}

func (e *Engine) tryPlace(side core.Side, level int, now time.Time) {
	if level < 0 || level >= e.ladder.Len() {
		return
	}
	if _, ok := e.placeOrder(side, level, now); ok {
		e.logger.Debug("grid rebalanced", "side", side, "level", level, "price", e.ladder.Price(level))
	}
}

// placeOrder creates a pending order on a ladder level after the capacity
// checks. A failed check is not an error, the creation is silently skipped.
func (e *Engine) placeOrder(side core.Side, level int, now time.Time) (*core.Order, bool) {
	qty := e.cfg.QuantityPerGrid
	if e.cfg.Risk.OrdersExhausted(e.book.PendingCount()) {
		return nil, false
	}
	if e.cfg.Risk.PositionTooLarge(qty) {
		return nil, false
	}
	price := e.ladder.Price(level)
	if side == core.SideBuy && e.cfg.Risk.ExposureExceeded(e.ledger.TotalExposure(), price.Mul(qty)) {
		return nil, false
	}
	return e.book.Insert(side, price, qty, level, now)
}

// Statistics returns the aggregate strategy view. Pure read.
func (e *Engine) Statistics() core.Statistics {
	winRate := 0.0
	if e.totalTrades > 0 {
		winRate = float64(e.winningTrades) / float64(e.totalTrades) * 100
	}
	unrealized := decimal.Zero
	if e.hasPrice {
		unrealized = e.ledger.UnrealizedPnL(e.lastPrice)
	}
	return core.Statistics{
		TotalTrades:   e.totalTrades,
		WinningTrades: e.winningTrades,
		LosingTrades:  e.losingTrades,
		WinRate:       winRate,
		TotalProfit:   e.totalProfit,
		UnrealizedPnL: unrealized,
		OpenPositions: e.ledger.OpenCount(),
		PendingOrders: e.book.PendingCount(),
		TotalExposure: e.ledger.TotalExposure(),
	}
}

// Stop cancels every pending order, force-closes every open position at the
// last observed price (ladder midpoint when no tick was seen) and deactivates
// the strategy. Idempotent.
func (e *Engine) Stop() {
	if !e.active {
		return
	}
	now := time.Now()
	for _, o := range e.book.Pending() {
		e.book.Cancel(o.ID)
	}
	closing := e.lastPrice
	if !e.hasPrice {
		closing = e.ladder.MidPrice()
	}
	for _, pos := range e.ledger.OpenPositions() {
		pnl := e.closePosition(pos.ID, closing, now)
		e.logger.Info("position force closed on stop", "position", pos.ID, "exit", closing, "pnl", pnl)
	}
	e.active = false
	e.logger.Info("strategy stopped", "total_trades", e.totalTrades, "total_profit", e.totalProfit)
}

// Orders returns value copies of every order.
func (e *Engine) Orders() []core.Order {
	return e.book.All()
}

// Positions returns value copies of every position.
func (e *Engine) Positions() []core.Position {
	return e.ledger.All()
}
