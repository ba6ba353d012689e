package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"gridsim/internal/core"
)

// OrderBook owns every order the engine has ever created, indexed by ID.
// Orders transition PENDING -> FILLED/CANCELLED and are never removed.
// At most one pending order exists per grid level.
type OrderBook struct {
	orders  map[int64]*core.Order
	seq     []int64       // insertion order, for deterministic iteration
	byLevel map[int]int64 // level -> pending order ID
	nextID  int64
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		orders:  make(map[int64]*core.Order),
		byLevel: make(map[int]int64),
		nextID:  1,
	}
}

// Insert creates a new pending order at the given grid level. The caller is
// responsible for capacity checks; Insert only enforces the one-pending-order
// per level invariant.
func (b *OrderBook) Insert(side core.Side, price, qty decimal.Decimal, level int, now time.Time) (*core.Order, bool) {
	if _, occupied := b.byLevel[level]; occupied {
		return nil, false
	}
	o := &core.Order{
		ID:        b.nextID,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Status:    core.OrderStatusPending,
		Level:     level,
		CreatedAt: now,
	}
	b.nextID++
	b.orders[o.ID] = o
	b.seq = append(b.seq, o.ID)
	b.byLevel[level] = o.ID
	return o, true
}

// Get returns the order with the given ID.
func (b *OrderBook) Get(id int64) (*core.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// Fill transitions a pending order to FILLED at the given price and frees its
// level.
func (b *OrderBook) Fill(id int64, at decimal.Decimal, now time.Time) {
	o, ok := b.orders[id]
	if !ok || o.Status != core.OrderStatusPending {
		return
	}
	o.Status = core.OrderStatusFilled
	o.FilledPrice = at
	o.FilledAt = now
	delete(b.byLevel, o.Level)
}

// Cancel transitions a pending order to CANCELLED and frees its level.
func (b *OrderBook) Cancel(id int64) {
	o, ok := b.orders[id]
	if !ok || o.Status != core.OrderStatusPending {
		return
	}
	o.Status = core.OrderStatusCancelled
	delete(b.byLevel, o.Level)
}

// Pending returns the pending orders in insertion order.
func (b *OrderBook) Pending() []*core.Order {
	out := make([]*core.Order, 0, len(b.byLevel))
	for _, id := range b.seq {
		if o := b.orders[id]; o.Status == core.OrderStatusPending {
			out = append(out, o)
		}
	}
	return out
}

// PendingCount returns the number of pending orders.
func (b *OrderBook) PendingCount() int {
	return len(b.byLevel)
}

// PendingAtLevel returns the pending order resting on the given grid level.
func (b *OrderBook) PendingAtLevel(level int) (*core.Order, bool) {
	id, ok := b.byLevel[level]
	if !ok {
		return nil, false
	}
	return b.orders[id], true
}

// All returns value copies of every order in insertion order.
func (b *OrderBook) All() []core.Order {
	out := make([]core.Order, 0, len(b.seq))
	for _, id := range b.seq {
		out = append(out, *b.orders[id])
	}
	return out
}

// Restore rebuilds the book from a snapshot order list.
func (b *OrderBook) Restore(orders []core.Order) {
	b.orders = make(map[int64]*core.Order, len(orders))
	b.seq = make([]int64, 0, len(orders))
	b.byLevel = make(map[int]int64)
	b.nextID = 1
	for i := range orders {
		o := orders[i]
		b.orders[o.ID] = &o
		b.seq = append(b.seq, o.ID)
		if o.Status == core.OrderStatusPending {
			b.byLevel[o.Level] = o.ID
		}
		if o.ID >= b.nextID {
			b.nextID = o.ID + 1
		}
	}
}
