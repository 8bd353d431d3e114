package plant

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/config"
	"github.com/Amir23156/BottleAsec/internal/tag"
	"github.com/Amir23156/BottleAsec/internal/tag/tagtest"
)

func testConfig() Config {
	return Config{
		FillRate:     1.0,
		DrainRate:    0.5,
		BottleRate:   0.5,
		ConveyorRate: 1.0,
		BeltLength:   2.0,
		FillerReach:  1.0,
	}
}

func newSim(store tag.Store) *Simulator {
	return New(store, testConfig(), clock.NewManual(time.Unix(0, 0)), log.New(io.Discard, "", 0))
}

func set(t *testing.T, s tag.Store, values map[tag.ID]float64) {
	t.Helper()
	for id, v := range values {
		require.NoError(t, s.Write(context.Background(), id, v))
	}
}

func value(t *testing.T, s tag.Store, id tag.ID) float64 {
	t.Helper()
	v, err := s.Read(context.Background(), id)
	require.NoError(t, err)
	return v
}

func TestTankFillsWithInletOpen(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{tag.TankLevel: 4.0, tag.TankInputValve: 1, tag.TankOutputValve: 0})

	require.NoError(t, newSim(store).Step(context.Background(), time.Second))
	assert.InDelta(t, 5.0, value(t, store, tag.TankLevel), 1e-9)
}

func TestOutletFillsBottleUnderFiller(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{
		tag.TankLevel:       4.0,
		tag.TankInputValve:  0,
		tag.TankOutputValve: 1,
		tag.BottleLevel:     0,
		tag.BottleDistance:  0,
	})

	require.NoError(t, newSim(store).Step(context.Background(), time.Second))
	assert.InDelta(t, 3.5, value(t, store, tag.TankLevel), 1e-9)
	assert.InDelta(t, 0.5, value(t, store, tag.BottleLevel), 1e-9)
}

func TestOutletSpillsWhenBottleAway(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{
		tag.TankLevel:       4.0,
		tag.TankInputValve:  0,
		tag.TankOutputValve: 1,
		tag.BottleDistance:  1.5,
	})

	require.NoError(t, newSim(store).Step(context.Background(), time.Second))
	assert.InDelta(t, 3.5, value(t, store, tag.TankLevel), 1e-9)
	assert.Equal(t, 0.0, value(t, store, tag.BottleLevel))
}

func TestTankNeverNegative(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{tag.TankLevel: 0.1, tag.TankInputValve: 0, tag.TankOutputValve: 1})

	require.NoError(t, newSim(store).Step(context.Background(), 10*time.Second))
	assert.Equal(t, 0.0, value(t, store, tag.TankLevel))
}

func TestConveyorSequence(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{
		tag.TankInputValve:  0,
		tag.TankOutputValve: 0,
		tag.BottleLevel:     1.8,
		tag.BottleDistance:  0,
	})
	sim := newSim(store)
	ctx := context.Background()

	// full bottle starts the belt
	require.NoError(t, sim.Step(ctx, time.Second))
	assert.Equal(t, 1.0, value(t, store, tag.ConveyorEngine))

	require.NoError(t, sim.Step(ctx, time.Second))
	assert.InDelta(t, 1.0, value(t, store, tag.BottleDistance), 1e-9)
	require.NoError(t, sim.Step(ctx, time.Second))
	require.NoError(t, sim.Step(ctx, time.Second))

	// past the belt end: fresh bottle at the filler, belt stopped
	assert.Equal(t, 1, sim.Bottles())
	assert.Equal(t, 0.0, value(t, store, tag.BottleLevel))
	assert.Equal(t, 0.0, value(t, store, tag.BottleDistance))
	assert.Equal(t, 0.0, value(t, store, tag.ConveyorEngine))
}

func TestConveyorManualModes(t *testing.T) {
	store := tag.NewMemory()
	sim := newSim(store)
	ctx := context.Background()

	set(t, store, map[tag.ID]float64{tag.ConveyorEngineMode: tag.ModeManualOpen})
	require.NoError(t, sim.Step(ctx, time.Second))
	assert.Equal(t, 1.0, value(t, store, tag.ConveyorEngine))

	set(t, store, map[tag.ID]float64{tag.ConveyorEngineMode: tag.ModeManualClosed, tag.BottleLevel: 1.8})
	require.NoError(t, sim.Step(ctx, time.Second))
	assert.Equal(t, 0.0, value(t, store, tag.ConveyorEngine))
}

func TestReadFailureWritesNothing(t *testing.T) {
	store := tagtest.New()
	store.FailRead(tag.ConveyorEngineMode, tag.ErrStaleRead)

	err := newSim(store).Step(context.Background(), time.Second)
	assert.ErrorIs(t, err, tag.ErrStaleRead)
	assert.Empty(t, store.Writes())
}

func TestWriteFailureKeepsEarlierWrites(t *testing.T) {
	store := tagtest.New()
	store.Set(tag.TankLevel, 4.0)
	store.Set(tag.TankInputValve, 0)
	store.Set(tag.TankOutputValve, 1)
	store.Set(tag.BottleDistance, 0)
	store.FailWrite(tag.BottleLevel, tag.ErrWriteRejected)

	err := newSim(store).Step(context.Background(), time.Second)
	assert.ErrorIs(t, err, tag.ErrWriteRejected)
	assert.Equal(t, []tagtest.WriteOp{{Tag: tag.TankLevel, Value: 3.5}}, store.Writes())
	assert.Equal(t, 0.0, value(t, store, tag.BottleLevel))
}

func TestRunStepsOnClock(t *testing.T) {
	store := tag.NewMemory()
	set(t, store, map[tag.ID]float64{tag.TankLevel: 4.0, tag.TankInputValve: 1, tag.TankOutputValve: 0})
	clk := clock.NewManual(time.Unix(0, 0))
	sim := New(store, testConfig(), clk, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx, time.Second) }()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(time.Second)
	require.Eventually(t, func() bool {
		v, err := store.Read(context.Background(), tag.TankLevel)
		return err == nil && v > 4.0
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestConfigFrom(t *testing.T) {
	def := config.Default()
	cfg := ConfigFrom(def.Plant, def.Control)
	assert.Equal(t, def.Plant.FillRate, cfg.FillRate)
	assert.Equal(t, def.Control.ConveyorLimit, cfg.FillerReach)
}
