// Package plant steps a coarse physical model of the bottle filling cell:
// the tank, the filler and the conveyor belt. It plays the field devices
// the controllers talk to and also sequences the conveyor the way the
// conveyor PLC does.
package plant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/config"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Config holds the process rates in units per second.
type Config struct {
	FillRate     float64
	DrainRate    float64
	BottleRate   float64
	ConveyorRate float64
	// BeltLength is the distance at which a bottle leaves the belt.
	BeltLength float64
	// FillerReach is the largest distance at which the filler still hits the bottle.
	FillerReach float64
}

// ConfigFrom builds the simulator config from the plant and control sections.
func ConfigFrom(p config.PlantConfig, c config.ControlConfig) Config {
	return Config{
		FillRate:     p.FillRate,
		DrainRate:    p.DrainRate,
		BottleRate:   p.BottleRate,
		ConveyorRate: p.ConveyorRate,
		BeltLength:   p.BeltLength,
		FillerReach:  c.ConveyorLimit,
	}
}

// State is the process image read at the start of a step.
type State struct {
	TankLevel      float64
	InletOpen      bool
	OutletOpen     bool
	BottleLevel    float64
	BottleMax      float64
	BottleDistance float64
	ConveyorOn     bool
	ConveyorMode   float64
}

// Simulator advances the process tags of a store.
type Simulator struct {
	store  tag.Store
	cfg    Config
	clock  clock.Clock
	logger *log.Logger

	bottles int
}

// New creates a simulator writing to store.
func New(store tag.Store, cfg Config, clk clock.Clock, logger *log.Logger) *Simulator {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{store: store, cfg: cfg, clock: clk, logger: logger}
}

// Bottles returns how many bottles left the belt.
func (s *Simulator) Bottles() int {
	return s.bottles
}

// Run steps the plant every period until ctx is done.
func (s *Simulator) Run(ctx context.Context, period time.Duration) error {
	s.logger.Printf("plant: simulator started (step %v)", period)
	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("plant: simulator stopped after %d bottles", s.bottles)
			return ctx.Err()
		case <-s.clock.After(period):
			if err := s.Step(ctx, period); err != nil {
				s.logger.Printf("plant: step failed: %v", err)
			}
		}
	}
}

// Step advances the process by dt. A failed read writes nothing. Changed tags
// are written in order tank level, bottle level, bottle distance, conveyor; a
// failed write ends the step and earlier writes of the step stay in place.
func (s *Simulator) Step(ctx context.Context, dt time.Duration) error {
	st, err := s.read(ctx)
	if err != nil {
		return err
	}
	next := s.advance(st, dt.Seconds())

	writes := []struct {
		id tag.ID
		v  float64
		ok bool
	}{
		{tag.TankLevel, next.TankLevel, next.TankLevel != st.TankLevel},
		{tag.BottleLevel, next.BottleLevel, next.BottleLevel != st.BottleLevel},
		{tag.BottleDistance, next.BottleDistance, next.BottleDistance != st.BottleDistance},
		{tag.ConveyorEngine, boolValue(next.ConveyorOn), next.ConveyorOn != st.ConveyorOn},
	}
	for _, w := range writes {
		if !w.ok {
			continue
		}
		if err := s.store.Write(ctx, w.id, w.v); err != nil {
			return fmt.Errorf("plant: %w", err)
		}
	}
	return nil
}

// advance is the pure process model
func (s *Simulator) advance(st State, sec float64) State {
	next := st

	if st.InletOpen {
		next.TankLevel += s.cfg.FillRate * sec
	}
	if st.OutletOpen && next.TankLevel > 0 {
		drained := s.cfg.DrainRate * sec
		if drained > next.TankLevel {
			drained = next.TankLevel
		}
		next.TankLevel -= drained
		if st.BottleDistance <= s.cfg.FillerReach {
			next.BottleLevel += s.cfg.BottleRate * sec
		}
	}

	switch st.ConveyorMode {
	case tag.ModeManualClosed:
		next.ConveyorOn = false
	case tag.ModeManualOpen:
		next.ConveyorOn = true
	default:
		if next.BottleLevel >= st.BottleMax {
			next.ConveyorOn = true
		}
	}

	if st.ConveyorOn {
		next.BottleDistance += s.cfg.ConveyorRate * sec
	}
	if next.BottleDistance > s.cfg.BeltLength {
		s.bottles++
		next.BottleLevel = 0
		next.BottleDistance = 0
		if st.ConveyorMode == tag.ModeAuto {
			next.ConveyorOn = false
		}
	}
	return next
}

func (s *Simulator) read(ctx context.Context) (State, error) {
	var st State
	var inlet, outlet, conveyor float64
	reads := []struct {
		id  tag.ID
		dst *float64
	}{
		{tag.TankLevel, &st.TankLevel},
		{tag.TankInputValve, &inlet},
		{tag.TankOutputValve, &outlet},
		{tag.BottleLevel, &st.BottleLevel},
		{tag.BottleLevelMax, &st.BottleMax},
		{tag.BottleDistance, &st.BottleDistance},
		{tag.ConveyorEngine, &conveyor},
		{tag.ConveyorEngineMode, &st.ConveyorMode},
	}
	for _, r := range reads {
		v, err := s.store.Read(ctx, r.id)
		if err != nil {
			return st, fmt.Errorf("plant: %w", err)
		}
		*r.dst = v
	}
	st.InletOpen = inlet != 0
	st.OutletOpen = outlet != 0
	st.ConveyorOn = conveyor != 0
	return st, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
