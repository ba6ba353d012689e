package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "gridsim/pkg/errors"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func validLimits() Limits {
	return Limits{
		MaxPositionSize:  d(100),
		StopLossPct:      d(5),
		TakeProfitPct:    d(10),
		MaxOpenOrders:    20,
		MaxTotalExposure: d(10000),
	}
}

func TestLimits_Validate(t *testing.T) {
	assert.NoError(t, validLimits().Validate())

	l := validLimits()
	l.MaxPositionSize = decimal.Zero
	assert.ErrorIs(t, l.Validate(), apperrors.ErrInvalidConfig)

	l = validLimits()
	l.StopLossPct = d(-1)
	assert.ErrorIs(t, l.Validate(), apperrors.ErrInvalidConfig)

	l = validLimits()
	l.TakeProfitPct = decimal.Zero
	assert.ErrorIs(t, l.Validate(), apperrors.ErrInvalidConfig)

	l = validLimits()
	l.MaxOpenOrders = 0
	assert.ErrorIs(t, l.Validate(), apperrors.ErrInvalidConfig)

	l = validLimits()
	l.MaxTotalExposure = d(-10)
	assert.ErrorIs(t, l.Validate(), apperrors.ErrInvalidConfig)
}

func TestPnLPercent(t *testing.T) {
	assert.True(t, PnLPercent(d(100), d(110)).Equal(d(10)))
	assert.True(t, PnLPercent(d(100), d(95)).Equal(d(-5)))
	assert.True(t, PnLPercent(d(100), d(100)).IsZero())
	assert.True(t, PnLPercent(decimal.Zero, d(100)).IsZero(), "zero entry must not divide")
}

func TestStopLossBreached(t *testing.T) {
	l := validLimits() // stop loss 5%

	assert.False(t, l.StopLossBreached(d(100), d(96)))
	assert.True(t, l.StopLossBreached(d(100), d(95)), "exact threshold triggers")
	assert.True(t, l.StopLossBreached(d(100), d(90)))
	assert.False(t, l.StopLossBreached(d(100), d(110)), "gains never trigger stop loss")
}

func TestTakeProfitReached(t *testing.T) {
	l := validLimits() // take profit 10%

	assert.False(t, l.TakeProfitReached(d(100), d(109)))
	assert.True(t, l.TakeProfitReached(d(100), d(110)), "exact threshold triggers")
	assert.True(t, l.TakeProfitReached(d(100), d(120)))
	assert.False(t, l.TakeProfitReached(d(100), d(95)), "losses never trigger take profit")
}

func TestOrdersExhausted(t *testing.T) {
	l := validLimits() // max 20

	assert.False(t, l.OrdersExhausted(19))
	assert.True(t, l.OrdersExhausted(20))
	assert.True(t, l.OrdersExhausted(21))
}

func TestExposureExceeded(t *testing.T) {
	l := validLimits() // max 10000

	assert.False(t, l.ExposureExceeded(d(5000), d(5000)), "exact cap is allowed")
	assert.True(t, l.ExposureExceeded(d(5000), d(5001)))
	assert.False(t, l.ExposureExceeded(decimal.Zero, d(10000)))
}

func TestPositionTooLarge(t *testing.T) {
	l := validLimits() // max 100

	assert.False(t, l.PositionTooLarge(d(100)))
	assert.True(t, l.PositionTooLarge(d(100.01)))
}
