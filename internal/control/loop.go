package control

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Command is one actuator write issued by the loop.
type Command struct {
	Tag   tag.ID
	Value float64
}

// Report describes what one tick observed and did.
type Report struct {
	At       time.Time
	State    Arbitration
	Inlet    Arbitration
	Outlet   Arbitration
	Reason   string
	Commands []Command
	Err      error
}

// Loop is the valve controller. It is safe to call Tick from one goroutine
// while others read State.
type Loop struct {
	store   tag.Store
	clock   clock.Clock
	cfg     Config
	logger  *log.Logger
	metrics *metrics.Registry

	mu            sync.Mutex
	state         Arbitration
	lastEmergency time.Time
}

// New creates a loop in Automatic state.
func New(store tag.Store, clk clock.Clock, cfg Config, logger *log.Logger, m *metrics.Registry) *Loop {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		store:   store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		state:   Automatic,
	}
}

// State returns the current group arbitration.
func (l *Loop) State() Arbitration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastEmergency returns the last emergency stamp; zero if none yet.
func (l *Loop) LastEmergency() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastEmergency
}

// Run ticks every period until ctx is done.
func (l *Loop) Run(ctx context.Context, period time.Duration) error {
	l.logger.Printf("control: loop started (period %v)", period)
	for {
		select {
		case <-ctx.Done():
			l.logger.Printf("control: loop stopped")
			return ctx.Err()
		case <-l.clock.After(period):
			l.Tick(ctx)
		}
	}
}

// Tick runs one control cycle.
func (l *Loop) Tick(ctx context.Context) Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	rep := Report{At: l.clock.Now()}

	reason, err := l.detect(ctx, rep.At)
	if err != nil {
		rep.State = l.state
		rep.Err = err
		l.metrics.RecordTick(l.state.String())
		return rep
	}
	rep.State = l.state
	rep.Reason = reason

	if l.state == EmergencyOverride && l.cfg.Verbose {
		l.logger.Printf("control: emergency override active since %s, observing",
			l.lastEmergency.Format(time.RFC3339))
	}

	var valveErr error
	rep.Inlet, valveErr = l.arbitrate(ctx, tag.TankInputValveMode)
	if valveErr == nil && rep.Inlet == Automatic {
		valveErr = l.regulateInlet(ctx, &rep)
	}
	if valveErr != nil {
		rep.Err = valveErr
	}

	rep.Outlet, valveErr = l.arbitrate(ctx, tag.TankOutputMode)
	if valveErr == nil && rep.Outlet == Automatic {
		valveErr = l.regulateOutlet(ctx, &rep)
	}
	if valveErr != nil && rep.Err == nil {
		rep.Err = valveErr
	}

	l.metrics.RecordTick(l.state.String())
	return rep
}

// detect updates the group state from the bound tags and tank level. A read
// failure leaves the state untouched.
func (l *Loop) detect(ctx context.Context, now time.Time) (string, error) {
	tankMax, err := l.read(ctx, tag.TankLevelMax)
	if err != nil {
		return "", err
	}
	bottleMax, err := l.read(ctx, tag.BottleLevelMax)
	if err != nil {
		return "", err
	}
	level, err := l.read(ctx, tag.TankLevel)
	if err != nil {
		return "", err
	}

	var reason, kind string
	switch {
	case tankMax > l.cfg.TankBoundCeiling:
		reason = fmt.Sprintf("%s %.2f above ceiling %.2f", tag.TankLevelMax, tankMax, l.cfg.TankBoundCeiling)
		kind = "tank_bound"
	case bottleMax > l.cfg.BottleBoundCeiling:
		reason = fmt.Sprintf("%s %.2f above ceiling %.2f", tag.BottleLevelMax, bottleMax, l.cfg.BottleBoundCeiling)
		kind = "bottle_bound"
	case level > l.cfg.CriticalTankLevel:
		reason = fmt.Sprintf("%s %.2f above critical %.2f", tag.TankLevel, level, l.cfg.CriticalTankLevel)
		kind = "critical_level"
	}

	if reason != "" {
		if l.state != EmergencyOverride {
			l.logger.Printf("control: emergency override detected: %s", reason)
		}
		l.state = EmergencyOverride
		l.lastEmergency = now
		l.metrics.RecordEmergency(kind)
		return reason, nil
	}

	if l.state == EmergencyOverride && !now.Before(l.lastEmergency.Add(l.cfg.EmergencyTimeout)) {
		l.state = Automatic
		l.logger.Printf("control: emergency override timed out after %v, returning to automatic", l.cfg.EmergencyTimeout)
	}
	return "", nil
}

// arbitrate decides who governs the valve whose mode tag is modeTag
func (l *Loop) arbitrate(ctx context.Context, modeTag tag.ID) (Arbitration, error) {
	mode, err := l.read(ctx, modeTag)
	if err != nil {
		return l.state, err
	}
	if tag.IsManual(mode) {
		return ManualOverride, nil
	}
	return l.state, nil
}

func (l *Loop) regulateInlet(ctx context.Context, rep *Report) error {
	level, err := l.read(ctx, tag.TankLevel)
	if err != nil {
		return err
	}
	low, err := l.read(ctx, tag.TankLevelMin)
	if err != nil {
		return err
	}
	high, err := l.read(ctx, tag.TankLevelMax)
	if err != nil {
		return err
	}

	switch {
	case level > high:
		return l.write(ctx, rep, tag.TankInputValve, 0)
	case level < low:
		return l.write(ctx, rep, tag.TankInputValve, 1)
	}
	return nil
}

func (l *Loop) regulateOutlet(ctx context.Context, rep *Report) error {
	bottle, err := l.read(ctx, tag.BottleLevel)
	if err != nil {
		return err
	}
	bottleMax, err := l.read(ctx, tag.BottleLevelMax)
	if err != nil {
		return err
	}
	distance, err := l.read(ctx, tag.BottleDistance)
	if err != nil {
		return err
	}

	if bottle > bottleMax || distance > l.cfg.ConveyorLimit {
		return l.write(ctx, rep, tag.TankOutputValve, 0)
	}
	return l.write(ctx, rep, tag.TankOutputValve, 1)
}

func (l *Loop) read(ctx context.Context, id tag.ID) (float64, error) {
	v, err := l.store.Read(ctx, id)
	if err != nil {
		l.logger.Printf("control: read %s failed: %v", id, err)
		l.metrics.RecordTransportError("read", tag.Code(err))
		return 0, err
	}
	return v, nil
}

func (l *Loop) write(ctx context.Context, rep *Report, id tag.ID, v float64) error {
	if err := l.store.Write(ctx, id, v); err != nil {
		l.logger.Printf("control: write %s=%v failed: %v", id, v, err)
		l.metrics.RecordTransportError("write", tag.Code(err))
		return err
	}
	rep.Commands = append(rep.Commands, Command{Tag: id, Value: v})
	l.metrics.RecordActuatorWrite(string(id))
	return nil
}
