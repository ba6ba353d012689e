// Package backtest replays price sequences through a strategy engine and
// records the aggregated results.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"gridsim/internal/core"
	"gridsim/internal/engine"
	apperrors "gridsim/pkg/errors"
)

// PricePoint is one replayed tick.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Result aggregates one simulation run.
type Result struct {
	RunID         string          `json:"run_id"`
	Symbol        string          `json:"symbol"`
	Ticks         int             `json:"ticks"`
	InitialOrders int             `json:"initial_orders"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	Statistics    core.Statistics `json:"statistics"`
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithPacing throttles the replay to the given number of ticks per second,
// for live-like replays. Zero or negative disables pacing.
func WithPacing(ticksPerSecond float64) Option {
	return func(s *Simulator) {
		if ticksPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(ticksPerSecond), 1)
		}
	}
}

// Simulator deterministically replays a price sequence through one strategy
// engine instance.
type Simulator struct {
	engine  *engine.Engine
	logger  core.ILogger
	limiter *rate.Limiter
	history []PricePoint
}

// NewSimulator wraps an engine for replay.
func NewSimulator(eng *engine.Engine, logger core.ILogger, opts ...Option) *Simulator {
	s := &Simulator{
		engine: eng,
		logger: logger.WithField("component", "simulator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run replays the prices strictly in sequence order, one engine tick per
// element, initializing the grid first if the engine is not already active.
// Timestamps are optional; when provided their count must match the price
// count. The context cancels the replay between ticks.
func (s *Simulator) Run(ctx context.Context, prices []float64, timestamps []time.Time) (Result, error) {
	if len(prices) == 0 {
		return Result{}, apperrors.ErrEmptySequence
	}
	if len(timestamps) > 0 && len(timestamps) != len(prices) {
		return Result{}, apperrors.ErrTimestampMismatch
	}

	res := Result{
		RunID:     uuid.NewString(),
		Symbol:    s.engine.Config().Symbol,
		StartedAt: time.Now(),
	}

	if !s.engine.Active() {
		orders := s.engine.InitializeGrid()
		res.InitialOrders = len(orders)
		s.logger.Info("grid initialized for run", "run", res.RunID, "orders", len(orders))
	}

	for i, price := range prices {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return res, err
			}
		}
		ts := time.Now()
		if len(timestamps) > 0 {
			ts = timestamps[i]
		}
		s.engine.UpdatePrice(price)
		s.history = append(s.history, PricePoint{Timestamp: ts, Price: price})
		res.Ticks++
	}

	res.FinishedAt = time.Now()
	res.Statistics = s.engine.Statistics()
	s.logger.Info("simulation complete",
		"run", res.RunID,
		"ticks", res.Ticks,
		"total_trades", res.Statistics.TotalTrades,
		"total_profit", res.Statistics.TotalProfit)
	return res, nil
}

// History returns the replayed price points in order.
func (s *Simulator) History() []PricePoint {
	out := make([]PricePoint, len(s.history))
	copy(out, s.history)
	return out
}
