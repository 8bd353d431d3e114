// Package metrics exposes Prometheus counters and gauges for the control loop,
// the command console and the scenario orchestrator.
//
// A nil *Registry is valid and records nothing, so components can be built
// without metrics in tests.
package metrics
