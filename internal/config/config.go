package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// EnvConfigFile names the YAML file to overlay on the defaults.
const EnvConfigFile = "BOTTLECELL_CONFIG"

// Config is the complete configuration of the cell.
type Config struct {
	Control   ControlConfig   `yaml:"control"`
	Console   ConsoleConfig   `yaml:"console"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Transport TransportConfig `yaml:"transport"`
	Plant     PlantConfig     `yaml:"plant"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ControlConfig holds the emergency thresholds and the loop period
type ControlConfig struct {
	TankBoundCeiling    float64 `yaml:"tankBoundCeiling" validate:"gt=0"`
	BottleBoundCeiling  float64 `yaml:"bottleBoundCeiling" validate:"gt=0"`
	CriticalTankLevel   float64 `yaml:"criticalTankLevel" validate:"gt=0"`
	ConveyorLimit       float64 `yaml:"conveyorLimit" validate:"gt=0"`
	EmergencyTimeoutSec int     `yaml:"emergencyTimeoutSec" validate:"min=1,max=3600"`
	TickMs              int     `yaml:"tickMs" validate:"min=10,max=60000"`
}

// ConsoleConfig holds the account table and session token settings
type ConsoleConfig struct {
	Accounts    []AccountConfig `yaml:"accounts" validate:"required,min=1,dive"`
	BcryptCost  int             `yaml:"bcryptCost" validate:"min=4,max=31"`
	TokenSecret string          `yaml:"tokenSecret" validate:"required,min=8"`
	TokenTTLSec int             `yaml:"tokenTtlSec" validate:"min=1"`

	// Network terminal of the station
	Listen         string   `yaml:"listen" validate:"required"`
	AllowedCIDRs   []string `yaml:"allowedCidrs" validate:"dive,cidr"`
	MaxConnections int      `yaml:"maxConnections" validate:"min=1,max=64"`
	IdleTimeoutSec int      `yaml:"idleTimeoutSec" validate:"min=1"`
}

// AccountConfig is one console login
type AccountConfig struct {
	Username string `yaml:"username" validate:"required,max=64"`
	Password string `yaml:"password" validate:"required"`
	Legacy   bool   `yaml:"legacy"`
}

// ScenarioConfig holds orchestrator settings
type ScenarioConfig struct {
	LogDir    string         `yaml:"logDir" validate:"required"`
	MaxSizeMB int            `yaml:"maxSizeMb" validate:"min=1"`
	PaceMs    int            `yaml:"paceMs" validate:"min=0"`
	Topology  TopologyConfig `yaml:"topology"`
}

// TopologyConfig is the simulated network the probe steps look into
type TopologyConfig struct {
	Hosts []HostConfig `yaml:"hosts" validate:"required,min=1,dive"`
}

// HostConfig is one simulated host
type HostConfig struct {
	Name       string   `yaml:"name" validate:"required"`
	Address    string   `yaml:"address" validate:"required,ip"`
	Network    string   `yaml:"network" validate:"required,cidr"`
	Role       string   `yaml:"role" validate:"required,oneof=plc hmi workstation"`
	Interfaces []string `yaml:"interfaces"`
	Services   []string `yaml:"services"`
}

// TransportConfig holds the tag transport endpoints
type TransportConfig struct {
	Listen    string `yaml:"listen" validate:"required"`
	Dial      string `yaml:"dial" validate:"required"`
	TimeoutMs int    `yaml:"timeoutMs" validate:"min=1,max=60000"`
}

// PlantConfig holds the plant stepper rates, in units per second
type PlantConfig struct {
	FillRate     float64 `yaml:"fillRate" validate:"gte=0"`
	DrainRate    float64 `yaml:"drainRate" validate:"gte=0"`
	BottleRate   float64 `yaml:"bottleRate" validate:"gte=0"`
	ConveyorRate float64 `yaml:"conveyorRate" validate:"gte=0"`
	BeltLength   float64 `yaml:"beltLength" validate:"gt=0"`
	StepMs       int     `yaml:"stepMs" validate:"min=10"`
}

// LoggingConfig holds process log settings
type LoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb" validate:"min=1"`
	MaxBackups int    `yaml:"maxBackups" validate:"min=0"`
}

// MetricsConfig holds the Prometheus endpoint
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Load builds the configuration from defaults, the YAML file at path (or the
// file named by BOTTLECELL_CONFIG when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Control: ControlConfig{
			TankBoundCeiling:    7.5,
			BottleBoundCeiling:  2.0,
			CriticalTankLevel:   8.0,
			ConveyorLimit:       1.0,
			EmergencyTimeoutSec: 30,
			TickMs:              200,
		},
		Console: ConsoleConfig{
			Accounts: []AccountConfig{
				{Username: "admin", Password: "password"},
				{Username: "john_smith", Password: "123456", Legacy: true},
				{Username: "marie_dupont", Password: "admin2023", Legacy: true},
				{Username: "test_user", Password: "test", Legacy: true},
			},
			BcryptCost:  4,
			TokenSecret: "bottlecell-panel-secret",
			TokenTTLSec: 8 * 3600,

			Listen:         "127.0.0.1:2323",
			AllowedCIDRs:   []string{"127.0.0.0/8", "192.168.0.0/24", "192.168.2.0/24"},
			MaxConnections: 4,
			IdleTimeoutSec: 300,
		},
		Scenario: ScenarioConfig{
			LogDir:    "logs",
			MaxSizeMB: 10,
			PaceMs:    500,
			Topology: TopologyConfig{
				Hosts: []HostConfig{
					{Name: "plc1_tank", Address: "192.168.0.11", Network: "192.168.0.0/24", Role: "plc", Interfaces: []string{"eth0"}, Services: []string{"modbus/502"}},
					{Name: "plc2_conveyor", Address: "192.168.0.12", Network: "192.168.0.0/24", Role: "plc", Interfaces: []string{"eth0"}, Services: []string{"modbus/502"}},
					{Name: "hmi1_supervision", Address: "192.168.0.21", Network: "192.168.0.0/24", Role: "hmi", Interfaces: []string{"eth0"}},
					{Name: "hmi2_config", Address: "192.168.0.22", Network: "192.168.0.0/24", Role: "hmi", Interfaces: []string{"eth0"}},
					{Name: "hmi3_emergency", Address: "192.168.0.23", Network: "192.168.0.0/24", Role: "hmi", Interfaces: []string{"eth0"}, Services: []string{"console/23"}},
					{Name: "office_pc1", Address: "192.168.2.10", Network: "192.168.2.0/24", Role: "workstation", Interfaces: []string{"wlan0"}},
					{Name: "office_pc2", Address: "192.168.2.11", Network: "192.168.2.0/24", Role: "workstation", Interfaces: []string{"wlan0"}},
					{Name: "wifi_bridge", Address: "192.168.2.23", Network: "192.168.2.0/24", Role: "hmi", Interfaces: []string{"wlan0", "eth0"}, Services: []string{"console/23"}},
				},
			},
		},
		Transport: TransportConfig{
			Listen:    "tcp://127.0.0.1:5502",
			Dial:      "tcp://127.0.0.1:5502",
			TimeoutMs: 1000,
		},
		Plant: PlantConfig{
			FillRate:     0.2,
			DrainRate:    0.15,
			BottleRate:   0.1,
			ConveyorRate: 0.25,
			BeltLength:   2.0,
			StepMs:       100,
		},
		Logging: LoggingConfig{
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Listen: ":9102",
		},
	}
}

// EmergencyTimeout returns the emergency hold time as a duration.
func (c ControlConfig) EmergencyTimeout() time.Duration {
	return time.Duration(c.EmergencyTimeoutSec) * time.Second
}

// Tick returns the loop period.
func (c ControlConfig) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// TokenTTL returns the session token lifetime.
func (c ConsoleConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSec) * time.Second
}

// IdleTimeout returns how long a terminal may stay silent.
func (c ConsoleConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// Pace returns the delay inserted between scenario steps.
func (s ScenarioConfig) Pace() time.Duration {
	return time.Duration(s.PaceMs) * time.Millisecond
}

// Timeout returns the transport receive deadline.
func (t TransportConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// Step returns the plant simulation step.
func (p PlantConfig) Step() time.Duration {
	return time.Duration(p.StepMs) * time.Millisecond
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
