// Package feed provides the price-sequence sources that drive a simulation:
// synthetic oscillators, CSV files and historical market data.
package feed

import (
	"context"
	"math/rand"
	"time"
)

// SyntheticConfig parameterizes the deterministic oscillating generator.
type SyntheticConfig struct {
	BasePrice  float64
	LowerBound float64
	UpperBound float64
	Amplitude  float64 // noise range, +/- around the oscillation
	Ticks      int
	Seed       int64
	Interval   time.Duration // spacing of the synthetic timestamps
}

// SyntheticSource generates a seeded oscillating price walk around a base
// price, loosely clamped to the grid range. The same seed always yields the
// same sequence.
type SyntheticSource struct {
	cfg SyntheticConfig
}

// NewSyntheticSource creates a generator with defaults filled in.
func NewSyntheticSource(cfg SyntheticConfig) *SyntheticSource {
	if cfg.Ticks <= 0 {
		cfg.Ticks = 100
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = (cfg.UpperBound - cfg.LowerBound) / 10
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &SyntheticSource{cfg: cfg}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

// Fetch produces the full price sequence. The walk oscillates in 20-tick
// cycles with uniform noise and may overshoot the bounds by up to 200 to
// exercise the out-of-range handling.
func (s *SyntheticSource) Fetch(_ context.Context) ([]float64, []time.Time, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	prices := make([]float64, 0, s.cfg.Ticks)
	timestamps := make([]time.Time, 0, s.cfg.Ticks)

	start := time.Now().Add(-time.Duration(s.cfg.Ticks) * s.cfg.Interval)
	for i := 0; i < s.cfg.Ticks; i++ {
		noise := (rng.Float64()*2 - 1) * s.cfg.Amplitude
		trend := 300 * float64(i%20-10) / 10
		price := s.cfg.BasePrice + trend + noise
		if price < s.cfg.LowerBound-200 {
			price = s.cfg.LowerBound - 200
		}
		if price > s.cfg.UpperBound+200 {
			price = s.cfg.UpperBound + 200
		}
		prices = append(prices, price)
		timestamps = append(timestamps, start.Add(time.Duration(i)*s.cfg.Interval))
	}
	return prices, timestamps, nil
}
