package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridsim/internal/core"
	apperrors "gridsim/pkg/errors"
)

func sampleResult() Result {
	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return Result{
		RunID:         uuid.NewString(),
		Symbol:        "BTCUSDT",
		Ticks:         200,
		InitialOrders: 9,
		StartedAt:     started,
		FinishedAt:    started.Add(3 * time.Second),
		Statistics: core.Statistics{
			TotalTrades:   12,
			WinningTrades: 8,
			LosingTrades:  4,
			WinRate:       66.67,
			TotalProfit:   d(321.5),
			UnrealizedPnL: d(-12.25),
			OpenPositions: 2,
			PendingOrders: 9,
			TotalExposure: d(6400),
		},
	}
}

func newTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResultStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res := sampleResult()
	require.NoError(t, store.InsertResult(ctx, res))

	got, err := store.GetResult(ctx, res.RunID)
	require.NoError(t, err)

	assert.Equal(t, res.RunID, got.RunID)
	assert.Equal(t, res.Symbol, got.Symbol)
	assert.Equal(t, res.Ticks, got.Ticks)
	assert.Equal(t, res.InitialOrders, got.InitialOrders)
	assert.Equal(t, res.Statistics.TotalTrades, got.Statistics.TotalTrades)
	assert.True(t, res.Statistics.TotalProfit.Equal(got.Statistics.TotalProfit))
	assert.Equal(t, res.StartedAt.UnixMilli(), got.StartedAt.UnixMilli())
	assert.Equal(t, res.FinishedAt.UnixMilli(), got.FinishedAt.UnixMilli())
}

func TestResultStore_GetUnknownRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetResult(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, apperrors.ErrRunNotFound)
}

func TestResultStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleResult()
	newer := sampleResult()
	newer.StartedAt = older.StartedAt.Add(time.Hour)

	require.NoError(t, store.InsertResult(ctx, older))
	require.NoError(t, store.InsertResult(ctx, newer))

	runs, err := store.ListResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.RunID, runs[0].RunID)
	assert.Equal(t, older.RunID, runs[1].RunID)
}

func TestResultStore_ListRespectsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := sampleResult()
		res.StartedAt = res.StartedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.InsertResult(ctx, res))
	}

	runs, err := store.ListResults(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestResultStore_ClosedStoreRejectsOperations(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx := context.Background()
	assert.ErrorIs(t, store.InsertResult(ctx, sampleResult()), apperrors.ErrStoreClosed)
	_, err = store.GetResult(ctx, "x")
	assert.ErrorIs(t, err, apperrors.ErrStoreClosed)
	_, err = store.ListResults(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrStoreClosed)

	assert.NoError(t, store.Close(), "double close is a no-op")
}

func TestResultStore_EmptyRootRejected(t *testing.T) {
	_, err := NewResultStore("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}
