// Package risk provides the immutable risk-control limits of a strategy and
// the pure predicates that evaluate them.
package risk

import (
	"github.com/shopspring/decimal"

	apperrors "gridsim/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Limits holds the risk-control parameters. Immutable after construction.
// Percentages are expressed in percent units (5.0 means 5%).
type Limits struct {
	MaxPositionSize  decimal.Decimal `json:"max_position_size"`
	StopLossPct      decimal.Decimal `json:"stop_loss_percentage"`
	TakeProfitPct    decimal.Decimal `json:"take_profit_percentage"`
	MaxOpenOrders    int             `json:"max_open_orders"`
	MaxTotalExposure decimal.Decimal `json:"max_total_exposure"`
}

// Validate rejects non-positive limit fields.
func (l Limits) Validate() error {
	if !l.MaxPositionSize.IsPositive() {
		return apperrors.ConfigError{Field: "risk_control.max_position_size", Value: l.MaxPositionSize, Message: "must be positive"}
	}
	if !l.StopLossPct.IsPositive() {
		return apperrors.ConfigError{Field: "risk_control.stop_loss_percentage", Value: l.StopLossPct, Message: "must be positive"}
	}
	if !l.TakeProfitPct.IsPositive() {
		return apperrors.ConfigError{Field: "risk_control.take_profit_percentage", Value: l.TakeProfitPct, Message: "must be positive"}
	}
	if l.MaxOpenOrders <= 0 {
		return apperrors.ConfigError{Field: "risk_control.max_open_orders", Value: l.MaxOpenOrders, Message: "must be positive"}
	}
	if !l.MaxTotalExposure.IsPositive() {
		return apperrors.ConfigError{Field: "risk_control.max_total_exposure", Value: l.MaxTotalExposure, Message: "must be positive"}
	}
	return nil
}

// PnLPercent returns (current-entry)/entry * 100 for a long position.
func PnLPercent(entry, current decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	return current.Sub(entry).Div(entry).Mul(hundred)
}

// StopLossBreached reports whether a long position entered at entry has lost
// at least the stop-loss percentage at the current price.
func (l Limits) StopLossBreached(entry, current decimal.Decimal) bool {
	return PnLPercent(entry, current).LessThanOrEqual(l.StopLossPct.Neg())
}

// TakeProfitReached reports whether a long position entered at entry has
// gained at least the take-profit percentage at the current price.
func (l Limits) TakeProfitReached(entry, current decimal.Decimal) bool {
	return PnLPercent(entry, current).GreaterThanOrEqual(l.TakeProfitPct)
}

// OrdersExhausted reports whether the pending order count has reached the cap.
func (l Limits) OrdersExhausted(pending int) bool {
	return pending >= l.MaxOpenOrders
}

// ExposureExceeded reports whether adding `additional` exposure on top of the
// current total would break the cap.
func (l Limits) ExposureExceeded(current, additional decimal.Decimal) bool {
	return current.Add(additional).GreaterThan(l.MaxTotalExposure)
}

// PositionTooLarge reports whether a single position of the given quantity
// exceeds the per-position size cap.
func (l Limits) PositionTooLarge(qty decimal.Decimal) bool {
	return qty.GreaterThan(l.MaxPositionSize)
}
