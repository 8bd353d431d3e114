// Package tag defines the shared process-variable store of the bottle cell.
//
// Every component (control loop, command console, scenario orchestrator, plant)
// coordinates only through named tags. Bound tags such as tank_level_max are
// ordinary tags and can be rewritten at runtime, which is what the control loop's
// emergency detector watches for.
//
// The store is last-writer-wins: there are no transactions and no ordering
// between writers beyond "a write is visible to the next read".
package tag
