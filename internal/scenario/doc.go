// Package scenario runs scripted intrusion scenarios against the cell.
//
// A scenario is an ordered list of steps. Each step has an action (probe,
// credential attempt, tag read or write, wait, console command, audit purge,
// observation) and an optional precondition checked before the action runs.
// One engine executes every scenario; scenarios differ only in their step
// lists.
//
// Steps run strictly in order. A failed precondition aborts the run at that
// step, and an action error or panic ends it in the Error outcome. Either way
// Run returns a terminal ScenarioRun and never propagates the fault. Every
// attempted step produces one progress line and one timestamped line in the
// scenario's log file.
package scenario
