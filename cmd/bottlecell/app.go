package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Amir23156/BottleAsec/internal/audit"
	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/config"
	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/control"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/plant"
	"github.com/Amir23156/BottleAsec/internal/scenario"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// auditFile is the JSONL mirror of the console trail under the log directory.
const auditFile = "console-audit.jsonl"

// app holds what every subcommand shares.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Registry
	clock   clock.Clock
	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, metrics: metrics.NewRegistry(), clock: clock.Real{}}
	a.logger = a.newLogger(cfg.Logging)
	return a, nil
}

// newLogger writes the process log to stderr and, when configured, to a
// rotating file
func (a *app) newLogger(cfg config.LoggingConfig) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		a.closers = append(a.closers, lj)
		w = io.MultiWriter(os.Stderr, lj)
	}
	return log.New(w, "", log.LstdFlags)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Printf("bottlecell: close failed: %v", err)
		}
	}
}

func loopConfig(c config.ControlConfig) control.Config {
	return control.Config{
		TankBoundCeiling:   c.TankBoundCeiling,
		BottleBoundCeiling: c.BottleBoundCeiling,
		CriticalTankLevel:  c.CriticalTankLevel,
		ConveyorLimit:      c.ConveyorLimit,
		EmergencyTimeout:   c.EmergencyTimeout(),
		Verbose:            verbose,
	}
}

func (a *app) newLoop(store tag.Store) *control.Loop {
	return control.New(store, a.clock, loopConfig(a.cfg.Control), a.logger, a.metrics)
}

func (a *app) newPlant(store tag.Store) *plant.Simulator {
	return plant.New(store, plant.ConfigFrom(a.cfg.Plant, a.cfg.Control), a.clock, a.logger)
}

func accountsFrom(cfg []config.AccountConfig) []console.Account {
	out := make([]console.Account, len(cfg))
	for i, c := range cfg {
		out[i] = console.Account{Username: c.Username, Password: c.Password, Legacy: c.Legacy}
	}
	return out
}

// newConsole builds the emergency console over store. The trail is mirrored
// as JSONL into the log directory.
func (a *app) newConsole(store tag.Store) (*console.Console, error) {
	cc := a.cfg.Console
	accounts, err := console.NewAccountRegistry(accountsFrom(cc.Accounts), cc.BcryptCost)
	if err != nil {
		return nil, err
	}

	mirror := &lumberjack.Logger{
		Filename: filepath.Join(a.cfg.Scenario.LogDir, auditFile),
		MaxSize:  a.cfg.Scenario.MaxSizeMB,
	}
	a.closers = append(a.closers, mirror)

	trail := audit.NewTrail(mirror, a.logger)
	return console.New(store, accounts, trail, console.Config{
		TokenSecret: cc.TokenSecret,
		TokenTTL:    cc.TokenTTL(),
	}, a.clock, a.logger, a.metrics)
}

func (a *app) newOrchestrator(store tag.Store, con *console.Console, progress io.Writer) (*scenario.Orchestrator, error) {
	sc := a.cfg.Scenario
	logs, err := audit.NewFileLog(sc.LogDir, sc.MaxSizeMB, a.clock)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, logs)

	return scenario.New(scenario.Deps{
		Store:    store,
		Console:  con,
		Topology: scenario.HostsFromConfig(sc.Topology),
		Clock:    a.clock,
		Progress: progress,
		Log:      logs,
		Logger:   a.logger,
		Metrics:  a.metrics,
	}, scenario.Catalog(sc.Pace())), nil
}

// serveMetrics exposes /metrics until ctx is done. An empty listen address
// disables it.
func (a *app) serveMetrics(ctx context.Context, wg *sync.WaitGroup) {
	addr := a.cfg.Metrics.Listen
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		a.logger.Printf("bottlecell: metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Printf("bottlecell: metrics server failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Printf("bottlecell: metrics shutdown error: %v", err)
		}
	}()
}

// runCell runs the control loop and the plant in the background until ctx
// is done.
func (a *app) runCell(ctx context.Context, wg *sync.WaitGroup, store tag.Store) *control.Loop {
	loop := a.newLoop(store)
	sim := a.newPlant(store)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = loop.Run(ctx, a.cfg.Control.Tick())
	}()
	go func() {
		defer wg.Done()
		_ = sim.Run(ctx, a.cfg.Plant.Step())
	}()
	return loop
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
