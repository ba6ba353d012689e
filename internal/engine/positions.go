package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"gridsim/internal/core"
)

// PositionLedger owns every position the engine has opened, indexed by ID.
// Closed positions are kept for the statistics and the state snapshot.
type PositionLedger struct {
	positions map[int64]*core.Position
	seq       []int64
	nextID    int64
}

// NewPositionLedger creates an empty ledger.
func NewPositionLedger() *PositionLedger {
	return &PositionLedger{
		positions: make(map[int64]*core.Position),
		nextID:    1,
	}
}

// Open records a new long position.
func (pl *PositionLedger) Open(entry, qty decimal.Decimal, level int, now time.Time) *core.Position {
	p := &core.Position{
		ID:         pl.nextID,
		Side:       core.PositionLong,
		EntryPrice: entry,
		Quantity:   qty,
		EntryLevel: level,
		Open:       true,
		OpenedAt:   now,
	}
	pl.nextID++
	pl.positions[p.ID] = p
	pl.seq = append(pl.seq, p.ID)
	return p
}

// Close settles an open position at the exit price and returns the realized
// PnL. Closing an already closed position is a no-op returning zero.
func (pl *PositionLedger) Close(id int64, exit decimal.Decimal, now time.Time) decimal.Decimal {
	p, ok := pl.positions[id]
	if !ok || !p.Open {
		return decimal.Zero
	}
	p.Open = false
	p.ClosePrice = exit
	p.RealizedPnL = exit.Sub(p.EntryPrice).Mul(p.Quantity)
	p.ClosedAt = now
	return p.RealizedPnL
}

// OpenPositions returns the open positions in opening order.
func (pl *PositionLedger) OpenPositions() []*core.Position {
	var out []*core.Position
	for _, id := range pl.seq {
		if p := pl.positions[id]; p.Open {
			out = append(out, p)
		}
	}
	return out
}

// OpenCount returns the number of open positions.
func (pl *PositionLedger) OpenCount() int {
	n := 0
	for _, id := range pl.seq {
		if pl.positions[id].Open {
			n++
		}
	}
	return n
}

// FindByEntryLevel returns the oldest open position entered at the given grid
// level.
func (pl *PositionLedger) FindByEntryLevel(level int) (*core.Position, bool) {
	for _, id := range pl.seq {
		if p := pl.positions[id]; p.Open && p.EntryLevel == level {
			return p, true
		}
	}
	return nil, false
}

// TotalExposure sums entry price x quantity over the open positions.
func (pl *PositionLedger) TotalExposure() decimal.Decimal {
	total := decimal.Zero
	for _, id := range pl.seq {
		if p := pl.positions[id]; p.Open {
			total = total.Add(p.Exposure())
		}
	}
	return total
}

// UnrealizedPnL marks the open positions to the given price.
func (pl *PositionLedger) UnrealizedPnL(current decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, id := range pl.seq {
		total = total.Add(pl.positions[id].UnrealizedPnL(current))
	}
	return total
}

// All returns value copies of every position in opening order.
func (pl *PositionLedger) All() []core.Position {
	out := make([]core.Position, 0, len(pl.seq))
	for _, id := range pl.seq {
		out = append(out, *pl.positions[id])
	}
	return out
}

// Restore rebuilds the ledger from a snapshot position list.
func (pl *PositionLedger) Restore(positions []core.Position) {
	pl.positions = make(map[int64]*core.Position, len(positions))
	pl.seq = make([]int64, 0, len(positions))
	pl.nextID = 1
	for i := range positions {
		p := positions[i]
		pl.positions[p.ID] = &p
		pl.seq = append(pl.seq, p.ID)
		if p.ID >= pl.nextID {
			pl.nextID = p.ID + 1
		}
	}
}
