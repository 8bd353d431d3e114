package console

import (
	"fmt"

	"github.com/Amir23156/BottleAsec/internal/tag"
)

// CommandID selects one of the panel commands.
type CommandID int

const (
	FullStop CommandID = iota + 1
	EmergencyDrain
	ForcedFill
	ConveyorStop
	SafetyLimitOverride
	ValveMaintenance
)

// Valve maintenance sub-choices.
const (
	MaintenanceInletOn  = 1
	MaintenanceOutletOn = 2
	MaintenanceAllOff   = 3
)

// Limits written by SafetyLimitOverride.
const (
	OverrideTankMax   = 10.0
	OverrideBottleMax = 2.5
)

// Write is one tag write issued by a command.
type Write struct {
	Tag   tag.ID
	Value float64
}

// Command describes a panel command.
type Command struct {
	ID          CommandID
	Name        string
	Description string
	Destructive bool
	writes      func(Args) ([]Write, error)
}

// Writes returns the tag writes the command performs for args.
func (c Command) Writes(args Args) ([]Write, error) {
	return c.writes(args)
}

var commands = []Command{
	{
		ID:          FullStop,
		Name:        "full-stop",
		Description: "Complete emergency stop",
		writes: fixed(
			Write{tag.TankInputValve, 0},
			Write{tag.TankOutputValve, 0},
			Write{tag.ConveyorEngine, 0},
		),
	},
	{
		ID:          EmergencyDrain,
		Name:        "emergency-drain",
		Description: "Emergency tank drain",
		Destructive: true,
		writes: fixed(
			Write{tag.TankInputValve, 0},
			Write{tag.TankOutputValve, 1},
		),
	},
	{
		ID:          ForcedFill,
		Name:        "forced-fill",
		Description: "Forced tank fill",
		Destructive: true,
		writes: fixed(
			Write{tag.TankInputValve, 1},
			Write{tag.TankOutputValve, 0},
		),
	},
	{
		ID:          ConveyorStop,
		Name:        "conveyor-stop",
		Description: "Emergency conveyor stop",
		writes:      fixed(Write{tag.ConveyorEngine, 0}),
	},
	{
		ID:          SafetyLimitOverride,
		Name:        "safety-limit-override",
		Description: "Override safety limits",
		Destructive: true,
		writes: fixed(
			Write{tag.TankLevelMax, OverrideTankMax},
			Write{tag.BottleLevelMax, OverrideBottleMax},
		),
	},
	{
		ID:          ValveMaintenance,
		Name:        "valve-maintenance",
		Description: "Valve maintenance mode",
		Destructive: true,
		writes:      maintenanceWrites,
	},
}

// Commands returns the command table in menu order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// LookupCommand returns the command with id.
func LookupCommand(id CommandID) (Command, error) {
	for _, c := range commands {
		if c.ID == id {
			return c, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %d", ErrUnknownCommand, id)
}

func fixed(ws ...Write) func(Args) ([]Write, error) {
	return func(Args) ([]Write, error) {
		out := make([]Write, len(ws))
		copy(out, ws)
		return out, nil
	}
}

func maintenanceWrites(args Args) ([]Write, error) {
	switch args.Sub {
	case MaintenanceInletOn:
		return []Write{{tag.TankInputValve, 1}}, nil
	case MaintenanceOutletOn:
		return []Write{{tag.TankOutputValve, 1}}, nil
	case MaintenanceAllOff:
		return []Write{{tag.TankInputValve, 0}, {tag.TankOutputValve, 0}}, nil
	default:
		return nil, fmt.Errorf("%w: maintenance option %d", ErrInvalidChoice, args.Sub)
	}
}
