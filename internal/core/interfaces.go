// Package core defines the shared types and interfaces of the simulator.
package core

import (
	"context"
	"time"
)

// ILogger defines the interface for logging
type ILogger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	WithField(key string, value interface{}) ILogger
	WithFields(fields map[string]interface{}) ILogger
}

// PriceSource produces an ordered price sequence for replay, together with
// per-tick timestamps. Implementations cover CSV files, synthetic generators
// and historical market data.
type PriceSource interface {
	Name() string
	Fetch(ctx context.Context) (prices []float64, timestamps []time.Time, err error)
}
