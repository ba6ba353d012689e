// Package grid computes the ladder of evenly spaced price levels that bounds
// the tradable intervals of a grid strategy.
package grid

import (
	"github.com/shopspring/decimal"

	apperrors "gridsim/pkg/errors"
)

// Ladder is the immutable set of grid price points between the configured
// bounds. Points are strictly ascending and include both bounds.
type Ladder struct {
	points  []decimal.Decimal
	spacing decimal.Decimal
	lower   decimal.Decimal
	upper   decimal.Decimal
}

// Compute builds the ladder for the given bounds and level count.
//
// For levels >= 2 the ladder has exactly `levels` points with
// point[i] = lower + i*(upper-lower)/(levels-1). A single level degenerates
// to the two bounds.
func Compute(lower, upper decimal.Decimal, levels int) (*Ladder, error) {
	if levels < 1 {
		return nil, apperrors.ConfigError{Field: "grid_levels", Value: levels, Message: "must be at least 1"}
	}
	if !lower.IsPositive() {
		return nil, apperrors.ConfigError{Field: "lower_bound", Value: lower, Message: "must be positive"}
	}
	if lower.GreaterThanOrEqual(upper) {
		return nil, apperrors.ConfigError{Field: "lower_bound", Value: lower, Message: "must be less than upper bound"}
	}

	if levels == 1 {
		return &Ladder{
			points:  []decimal.Decimal{lower, upper},
			spacing: upper.Sub(lower),
			lower:   lower,
			upper:   upper,
		}, nil
	}

	spacing := upper.Sub(lower).Div(decimal.NewFromInt(int64(levels - 1)))
	points := make([]decimal.Decimal, levels)
	for i := 0; i < levels; i++ {
		points[i] = lower.Add(spacing.Mul(decimal.NewFromInt(int64(i))))
	}
	// Pin the top of the ladder to the exact bound regardless of division
	// precision.
	points[levels-1] = upper

	return &Ladder{points: points, spacing: spacing, lower: lower, upper: upper}, nil
}

// Len returns the number of ladder points.
func (l *Ladder) Len() int {
	return len(l.points)
}

// Price returns the ladder point at index i.
func (l *Ladder) Price(i int) decimal.Decimal {
	return l.points[i]
}

// Points returns a copy of all ladder points.
func (l *Ladder) Points() []decimal.Decimal {
	out := make([]decimal.Decimal, len(l.points))
	copy(out, l.points)
	return out
}

// Spacing returns the distance between adjacent ladder points.
func (l *Ladder) Spacing() decimal.Decimal {
	return l.spacing
}

// LowerBound returns the bottom of the grid range.
func (l *Ladder) LowerBound() decimal.Decimal {
	return l.lower
}

// UpperBound returns the top of the grid range.
func (l *Ladder) UpperBound() decimal.Decimal {
	return l.upper
}

// Contains reports whether a price lies within the grid range.
func (l *Ladder) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(l.lower) && price.LessThanOrEqual(l.upper)
}

// MidPrice returns the ladder point at the middle index. Used as the closing
// fallback when a strategy stops before observing any tick.
func (l *Ladder) MidPrice() decimal.Decimal {
	return l.points[len(l.points)/2]
}
