package control

import "time"

// Arbitration is the authority that governs an actuator for one tick.
type Arbitration int

const (
	Automatic Arbitration = iota
	ManualOverride
	EmergencyOverride
)

func (a Arbitration) String() string {
	switch a {
	case Automatic:
		return "automatic"
	case ManualOverride:
		return "manual"
	case EmergencyOverride:
		return "emergency"
	default:
		return "unknown"
	}
}

// Config holds the emergency thresholds.
type Config struct {
	TankBoundCeiling   float64
	BottleBoundCeiling float64
	CriticalTankLevel  float64
	ConveyorLimit      float64
	EmergencyTimeout   time.Duration
	// Verbose logs a line on every tick spent in emergency.
	Verbose bool
}

// DefaultConfig returns the nominal thresholds of the cell.
func DefaultConfig() Config {
	return Config{
		TankBoundCeiling:   7.5,
		BottleBoundCeiling: 2.0,
		CriticalTankLevel:  8.0,
		ConveyorLimit:      1.0,
		EmergencyTimeout:   30 * time.Second,
	}
}
