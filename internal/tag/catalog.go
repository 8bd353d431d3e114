package tag

// ID names a process variable.
type ID string

// Kind is the value domain of a tag.
type Kind int

const (
	Boolean Kind = iota
	Analog
)

func (k Kind) String() string {
	if k == Boolean {
		return "boolean"
	}
	return "analog"
}

// Tag identifiers of the bottle filling cell.
const (
	TankLevel          ID = "tank_level_value"
	TankLevelMin       ID = "tank_level_min"
	TankLevelMax       ID = "tank_level_max"
	TankInputValve     ID = "tank_input_valve_status"
	TankInputValveMode ID = "tank_input_valve_mode"
	TankOutputValve    ID = "tank_output_valve_status"
	TankOutputMode     ID = "tank_output_valve_mode"
	BottleLevel        ID = "bottle_level_value"
	BottleLevelMax     ID = "bottle_level_max"
	BottleDistance     ID = "bottle_distance_to_filler_value"
	ConveyorEngine     ID = "conveyor_belt_engine_status"
	ConveyorEngineMode ID = "conveyor_belt_engine_mode"
)

// Actuator mode values. Any mode other than ModeAuto is operator (manual) control.
const (
	ModeManualClosed = 1
	ModeManualOpen   = 2
	ModeAuto         = 3
)

// IsManual reports whether a mode tag value hands the actuator to the operator.
func IsManual(mode float64) bool {
	return mode == ModeManualClosed || mode == ModeManualOpen
}

// Definition describes one tag.
type Definition struct {
	ID      ID
	Kind    Kind
	Default float64
}

// Catalog is the tag table of the cell with nominal defaults.
var Catalog = []Definition{
	{ID: TankLevel, Kind: Analog, Default: 5.8},
	{ID: TankLevelMin, Kind: Analog, Default: 3.0},
	{ID: TankLevelMax, Kind: Analog, Default: 7.0},
	{ID: TankInputValve, Kind: Boolean, Default: 1},
	{ID: TankInputValveMode, Kind: Analog, Default: ModeAuto},
	{ID: TankOutputValve, Kind: Boolean, Default: 0},
	{ID: TankOutputMode, Kind: Analog, Default: ModeAuto},
	{ID: BottleLevel, Kind: Analog, Default: 0},
	{ID: BottleLevelMax, Kind: Analog, Default: 1.8},
	{ID: BottleDistance, Kind: Analog, Default: 0},
	{ID: ConveyorEngine, Kind: Boolean, Default: 0},
	{ID: ConveyorEngineMode, Kind: Analog, Default: ModeAuto},
}
