package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gridsim/pkg/errors"
	"gridsim/pkg/logging"
)

func TestExportState_CapturesFullState(t *testing.T) {
	eng := newTestEngine(t, testConfig())
	eng.InitializeGrid()
	eng.UpdatePrice(120)
	eng.UpdatePrice(155)

	snap := eng.ExportState()

	assert.Equal(t, "BTCUSDT", snap.Config.Symbol)
	assert.Equal(t, 5, snap.Config.GridLevels)
	assert.Len(t, snap.Config.GridPrices, 5)
	assert.True(t, snap.Config.Active)
	assert.True(t, snap.Config.HasPrice)
	assert.True(t, snap.Config.CurrentPrice.Equal(d(155)))
	assert.Equal(t, eng.Statistics(), snap.Statistics)
	assert.Equal(t, eng.Orders(), snap.Orders)
	assert.Equal(t, eng.Positions(), snap.Positions)
}

func TestRestore_ReproducesIdenticalEngine(t *testing.T) {
	eng := newTestEngine(t, testConfig())
	eng.InitializeGrid()
	eng.UpdatePrice(120)
	eng.UpdatePrice(155)

	restored, err := Restore(eng.ExportState(), logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, eng.Statistics(), restored.Statistics())
	assert.Equal(t, eng.Orders(), restored.Orders())
	assert.Equal(t, eng.Positions(), restored.Positions())
	assert.Equal(t, eng.Active(), restored.Active())

	// Both engines evolve identically from the restored state.
	eng.UpdatePrice(150)
	restored.UpdatePrice(150)
	assert.Equal(t, eng.Statistics(), restored.Statistics())
}

func TestRestore_RejectsInvalidConfig(t *testing.T) {
	eng := newTestEngine(t, testConfig())
	eng.InitializeGrid()

	snap := eng.ExportState()
	snap.Config.GridLevels = 0

	_, err := Restore(snap, logging.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestRestore_InactiveSnapshotStaysInactive(t *testing.T) {
	eng := newTestEngine(t, testConfig())
	eng.InitializeGrid()
	eng.UpdatePrice(120)
	eng.Stop()

	restored, err := Restore(eng.ExportState(), logging.NewNop())
	require.NoError(t, err)

	assert.False(t, restored.Active())
	restored.UpdatePrice(150)
	assert.Equal(t, eng.Statistics(), restored.Statistics(), "inactive engine ignores ticks")
}
