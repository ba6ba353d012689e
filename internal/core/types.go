package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus is the lifecycle state of an order. Orders are never deleted,
// only transitioned.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PositionSide identifies the direction of a position. Only buy-then-sell
// round trips are modeled, so every position is long.
type PositionSide string

const PositionLong PositionSide = "LONG"

// Order is a resting limit order on one grid level.
type Order struct {
	ID          int64           `json:"id"`
	Side        Side            `json:"side"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      OrderStatus     `json:"status"`
	Level       int             `json:"level"`
	CreatedAt   time.Time       `json:"created_at"`
	FilledPrice decimal.Decimal `json:"filled_price"`
	FilledAt    time.Time       `json:"filled_at"`
}

// Position is one open or closed long position. RealizedPnL and ClosePrice
// are set when the position closes; a closed position is never mutated again.
type Position struct {
	ID          int64           `json:"id"`
	Side        PositionSide    `json:"side"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	EntryLevel  int             `json:"entry_level"`
	Open        bool            `json:"open"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	ClosePrice  decimal.Decimal `json:"close_price"`
	OpenedAt    time.Time       `json:"opened_at"`
	ClosedAt    time.Time       `json:"closed_at"`
}

// UnrealizedPnL returns the mark-to-market profit of the position at the
// given price. Zero for closed positions.
func (p Position) UnrealizedPnL(current decimal.Decimal) decimal.Decimal {
	if !p.Open {
		return decimal.Zero
	}
	return current.Sub(p.EntryPrice).Mul(p.Quantity)
}

// Exposure returns the capital committed to the position (entry price x quantity).
func (p Position) Exposure() decimal.Decimal {
	return p.EntryPrice.Mul(p.Quantity)
}

// Statistics is the fixed-shape aggregate view of a strategy engine.
// Counters cover closed positions: one trade per close, winning + losing = total.
type Statistics struct {
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	WinRate       float64         `json:"win_rate"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	OpenPositions int             `json:"open_positions"`
	PendingOrders int             `json:"pending_orders"`
	TotalExposure decimal.Decimal `json:"total_exposure"`
}
