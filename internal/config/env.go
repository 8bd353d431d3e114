package config

import (
	"fmt"
	"os"
	"strconv"
)

// applyEnvOverrides applies BOTTLECELL_* overrides. A malformed numeric value
// is an error rather than silently ignored.
func applyEnvOverrides(cfg *Config) error {
	floats := []struct {
		env string
		dst *float64
	}{
		{"BOTTLECELL_TANK_BOUND_CEILING", &cfg.Control.TankBoundCeiling},
		{"BOTTLECELL_BOTTLE_BOUND_CEILING", &cfg.Control.BottleBoundCeiling},
		{"BOTTLECELL_CRITICAL_TANK_LEVEL", &cfg.Control.CriticalTankLevel},
		{"BOTTLECELL_CONVEYOR_LIMIT", &cfg.Control.ConveyorLimit},
	}
	for _, f := range floats {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.env, v, err)
		}
		*f.dst = n
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"BOTTLECELL_EMERGENCY_TIMEOUT_SEC", &cfg.Control.EmergencyTimeoutSec},
		{"BOTTLECELL_TICK_MS", &cfg.Control.TickMs},
		{"BOTTLECELL_TRANSPORT_TIMEOUT_MS", &cfg.Transport.TimeoutMs},
		{"BOTTLECELL_SCENARIO_PACE_MS", &cfg.Scenario.PaceMs},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", i.env, v, err)
		}
		*i.dst = n
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"BOTTLECELL_TRANSPORT_LISTEN", &cfg.Transport.Listen},
		{"BOTTLECELL_TRANSPORT_DIAL", &cfg.Transport.Dial},
		{"BOTTLECELL_SCENARIO_LOG_DIR", &cfg.Scenario.LogDir},
		{"BOTTLECELL_LOG_FILE", &cfg.Logging.File},
		{"BOTTLECELL_METRICS_LISTEN", &cfg.Metrics.Listen},
		{"BOTTLECELL_TOKEN_SECRET", &cfg.Console.TokenSecret},
		{"BOTTLECELL_CONSOLE_LISTEN", &cfg.Console.Listen},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	return nil
}
