// Package audit implements the traceability surfaces of the cell.
//
// Trail is the command audit record of the console: one Record per dispatched
// command, appended in order and mirrored as JSON lines when a file sink is
// configured. Records can be purged per user, which is what a trace-cleanup
// step of an intrusion targets.
//
// FileLog keeps one append-only text file per name (log-<name>.txt) with lines
// of the form "[<timestamp>] <message>".
package audit
