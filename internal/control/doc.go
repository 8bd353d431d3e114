// Package control implements the tank valve controller.
//
// Every tick the loop decides, for the inlet and outlet valves, which
// authority governs them:
//
//   - ManualOverride when the valve's mode tag hands it to the operator; the
//     loop does not write that valve.
//   - EmergencyOverride after a safety bound tag was raised above its ceiling
//     or the tank level passed the critical level; the loop only observes until
//     the condition has been absent for the emergency timeout.
//   - Automatic otherwise: hysteresis on the tank level for the inlet, and
//     bottle/conveyor interlock for the outlet.
//
// Emergency detection runs first on every tick, including while manual mode is
// engaged. Any writer can trigger it; the loop has no notion of who changed a
// bound.
package control
