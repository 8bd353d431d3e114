package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the cell on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Control loop
	ControlTicksTotal          *prometheus.CounterVec
	ControlTransportErrors     *prometheus.CounterVec
	ControlEmergencyTriggers   *prometheus.CounterVec
	ControlArbitrationState    *prometheus.GaugeVec
	ControlActuatorWritesTotal *prometheus.CounterVec

	// Command console
	ConsoleAuthAttemptsTotal *prometheus.CounterVec
	ConsolePrivilegedAccess  prometheus.Counter
	ConsoleCommandsTotal     *prometheus.CounterVec
	ConsoleAuditPurgesTotal  prometheus.Counter
	ConsoleActiveSessions    prometheus.Gauge

	// Scenario orchestrator
	ScenarioRunsTotal   *prometheus.CounterVec
	ScenarioStepsTotal  *prometheus.CounterVec
	ScenarioRunDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initControlMetrics()
	r.initConsoleMetrics()
	r.initScenarioMetrics()
	return r
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
