package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 7.5, cfg.Control.TankBoundCeiling)
	assert.Equal(t, 2.0, cfg.Control.BottleBoundCeiling)
	assert.Equal(t, 8.0, cfg.Control.CriticalTankLevel)
	assert.Equal(t, 1.0, cfg.Control.ConveyorLimit)
	assert.Equal(t, 30*time.Second, cfg.Control.EmergencyTimeout())

	require.Len(t, cfg.Console.Accounts, 4)
	legacy := 0
	for _, a := range cfg.Console.Accounts {
		if a.Legacy {
			legacy++
		}
	}
	assert.Equal(t, 3, legacy)

	require.NoError(t, Validate(cfg))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cell.yaml")
	data := []byte(`
control:
  emergencyTimeoutSec: 5
  tankBoundCeiling: 9.0
  criticalTankLevel: 12.0
transport:
  dial: inproc://tags
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Control.EmergencyTimeout())
	assert.Equal(t, 9.0, cfg.Control.TankBoundCeiling)
	assert.Equal(t, "inproc://tags", cfg.Transport.Dial)
	// untouched keys keep defaults
	assert.Equal(t, 2.0, cfg.Control.BottleBoundCeiling)
	assert.Len(t, cfg.Console.Accounts, 4)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("control:\n  tickMs: 50\n"), 0644))
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Control.Tick())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOTTLECELL_EMERGENCY_TIMEOUT_SEC", "12")
	t.Setenv("BOTTLECELL_BOTTLE_BOUND_CEILING", "2.25")
	t.Setenv("BOTTLECELL_SCENARIO_LOG_DIR", "/tmp/attacks")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Control.EmergencyTimeoutSec)
	assert.Equal(t, 2.25, cfg.Control.BottleBoundCeiling)
	assert.Equal(t, "/tmp/attacks", cfg.Scenario.LogDir)
}

func TestEnvOverrideMalformed(t *testing.T) {
	t.Setenv("BOTTLECELL_TICK_MS", "fast")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Control.EmergencyTimeoutSec = 0 }},
		{"critical under ceiling", func(c *Config) { c.Control.CriticalTankLevel = 7.0 }},
		{"no accounts", func(c *Config) { c.Console.Accounts = nil }},
		{"duplicate account", func(c *Config) {
			c.Console.Accounts = append(c.Console.Accounts, AccountConfig{Username: "admin", Password: "x"})
		}},
		{"short secret", func(c *Config) { c.Console.TokenSecret = "abc" }},
		{"bcrypt cost too low", func(c *Config) { c.Console.BcryptCost = 2 }},
		{"bad host address", func(c *Config) { c.Scenario.Topology.Hosts[0].Address = "plc" }},
		{"host outside network", func(c *Config) { c.Scenario.Topology.Hosts[0].Address = "10.0.0.1" }},
		{"unknown role", func(c *Config) { c.Scenario.Topology.Hosts[0].Role = "router" }},
		{"empty dial", func(c *Config) { c.Transport.Dial = "" }},
		{"bad terminal network", func(c *Config) { c.Console.AllowedCIDRs = []string{"192.168.0.300/24"} }},
		{"no terminal connections", func(c *Config) { c.Console.MaxConnections = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}

	assert.Error(t, Validate(nil))
}
