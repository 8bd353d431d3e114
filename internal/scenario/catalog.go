package scenario

import (
	"time"

	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Catalog scenario names.
const (
	WifiBridgeAttack   = "wifi-bridge-attack"
	LegacyHMI3Attack   = "legacy-hmi3-attack"
	TankOverflowAttack = "tank-overflow-attack"
	CorrosiveSabotage  = "corrosive-sabotage"
)

// Addresses of the default plant network.
const (
	OfficeNetwork      = "192.168.2.0/24"
	SupervisionNetwork = "192.168.0.0/24"
	BridgeAddress      = "192.168.2.23"
	HMI3Address        = "192.168.0.23"
	PLC1Address        = "192.168.0.11"
)

// LegacyCredentials are the guesses tried against the emergency station.
var LegacyCredentials = []Credential{
	{Username: "admin", Password: "admin"},
	{Username: "admin", Password: "1234"},
	{Username: "john_smith", Password: "123456"},
	{Username: "marie_dupont", Password: "admin2023"},
	{Username: "test_user", Password: "test"},
}

// Catalog returns the default scenarios. pace is the unit of every wait;
// zero runs them back to back.
func Catalog(pace time.Duration) []Scenario {
	return []Scenario{
		{
			Name:        WifiBridgeAttack,
			Description: "External threat: office network to WiFi bridge to supervision network to PLCs",
			Steps: []Step{
				{
					Description: "Office network reconnaissance",
					Action:      Probe{Network: OfficeNetwork},
				},
				{
					Description: "Scan settle",
					Action:      Wait{Duration: 4 * pace},
				},
				{
					Description:  "WiFi bridge identification",
					Action:       Probe{Address: BridgeAddress, Interfaces: []string{"wlan0", "eth0"}},
					Precondition: PreviousSucceeded{},
				},
				{
					Description:  "WiFi bridge exploitation",
					Action:       Probe{Network: SupervisionNetwork, Role: "hmi"},
					Precondition: PreviousSucceeded{},
				},
				{
					Description:  "Lateral movement to PLCs",
					Action:       Probe{Network: SupervisionNetwork, Role: "plc", Service: "modbus"},
					Precondition: PreviousSucceeded{},
				},
				{
					Description:  "Critical valve command injection",
					Action:       WriteTag{Writes: []TagValue{{tag.TankInputValve, 1}, {tag.TankOutputValve, 0}}},
					Precondition: PreviousSucceeded{},
				},
				{
					Description: "Process control check",
					Action:      ReadTag{Tags: []tag.ID{tag.TankInputValve, tag.TankOutputValve, tag.TankLevel}},
				},
			},
		},
		{
			Name:        LegacyHMI3Attack,
			Description: "Insider threat: former employee account on the HMI3 emergency station",
			Steps: []Step{
				{
					Description: "Physical access to HMI3",
					Action:      Probe{Address: HMI3Address, Service: "console"},
				},
				{
					Description:  "Legacy account authentication",
					Action:       CredentialAttempt{Credentials: LegacyCredentials},
					Precondition: PreviousSucceeded{},
				},
				{
					Description:  "Admin privilege reconnaissance",
					Action:       ReadTag{Tags: []tag.ID{tag.TankLevelMax, tag.BottleLevelMax, tag.TankLevel}},
					Precondition: HasEmergencyAccess{},
				},
				{
					Description:  "Critical process manipulation",
					Action:       ConsoleCommand{Command: console.SafetyLimitOverride},
					Precondition: HasSession{},
				},
				{
					Description:  "Delayed sabotage programming",
					Action:       ConsoleCommand{Command: console.ForcedFill},
					Precondition: PreviousSucceeded{},
				},
				{
					Description:  "Safety limits disabled check",
					Action:       ReadTag{Tags: []tag.ID{tag.TankLevelMax, tag.BottleLevelMax}},
					Precondition: TagAbove{Tag: tag.TankLevelMax, Threshold: 7.5},
				},
			},
		},
		{
			Name:        TankOverflowAttack,
			Description: "Direct PLC1 command injection to overflow the corrosive liquid tank",
			Steps: []Step{
				{
					Description: "Connecting to PLC1 tank controller",
					Action:      Probe{Address: PLC1Address, Service: "modbus"},
				},
				{
					Description:  "Reading initial state",
					Action:       ReadTag{Tags: []tag.ID{tag.TankLevel, tag.TankInputValve, tag.TankOutputValve}},
					Precondition: PreviousSucceeded{},
				},
				{
					Description: "Forcing inlet valve open",
					Action:      WriteTag{Writes: []TagValue{{tag.TankInputValve, 1}}},
				},
				{
					Description: "Forcing outlet valve closed",
					Action:      WriteTag{Writes: []TagValue{{tag.TankOutputValve, 0}}},
				},
				{
					Description: "Bypassing safety limit",
					Action:      WriteTag{Writes: []TagValue{{tag.TankLevelMax, 15.0}}},
				},
				{
					Description:  "Overflow configuration check",
					Action:       ReadTag{Tags: []tag.ID{tag.TankLevelMax, tag.TankInputValve}},
					Precondition: TagAbove{Tag: tag.TankLevelMax, Threshold: 7.5},
				},
				{
					Description: "Monitoring level progression",
					Action:      Observe{Tag: tag.TankLevel, Samples: 5, Interval: 2 * pace},
				},
			},
		},
		{
			Name:        CorrosiveSabotage,
			Description: "Multi-phase sabotage through the emergency station with trace cleanup",
			Steps: []Step{
				{
					Description: "Emergency station access",
					Action:      CredentialAttempt{Credentials: LegacyCredentials},
				},
				{
					Description:  "Conveyor sabotage",
					Action:       ConsoleCommand{Command: console.ConveyorStop},
					Precondition: HasSession{},
				},
				{
					Description: "Sensor data manipulation",
					Action:      WriteTag{Writes: []TagValue{{tag.TankLevel, 5.0}}},
				},
				{
					Description: "Valve system sabotage",
					Action:      WriteTag{Writes: []TagValue{{tag.TankInputValve, 1}, {tag.TankOutputValve, 1}}},
				},
				{
					Description: "Hold",
					Action:      Wait{Duration: 2 * pace},
				},
				{
					Description:  "Audit trace cleanup",
					Action:       PurgeAudit{},
					Precondition: HasEmergencyAccess{},
				},
			},
		},
	}
}
