package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initControlMetrics() {
	r.ControlTicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_control_ticks_total",
			Help: "Control loop ticks by resulting arbitration state",
		},
		[]string{"state"},
	)

	r.ControlTransportErrors = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_control_transport_errors_total",
			Help: "Tag store failures seen by the control loop",
		},
		[]string{"op", "code"},
	)

	r.ControlEmergencyTriggers = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_control_emergency_triggers_total",
			Help: "Ticks that stamped the emergency timestamp, by cause",
		},
		[]string{"reason"},
	)

	r.ControlArbitrationState = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bottlecell_control_arbitration_state",
			Help: "Current arbitration state of the valve group (1 = active)",
		},
		[]string{"state"},
	)

	r.ControlActuatorWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_control_actuator_writes_total",
			Help: "Automatic actuator commands written by the control loop",
		},
		[]string{"tag"},
	)
}

func (r *Registry) initConsoleMetrics() {
	r.ConsoleAuthAttemptsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_console_auth_attempts_total",
			Help: "Console authentication attempts by result",
		},
		[]string{"result"},
	)

	r.ConsolePrivilegedAccess = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bottlecell_console_privileged_access_total",
			Help: "Logins that were granted legacy emergency access",
		},
	)

	r.ConsoleCommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_console_commands_total",
			Help: "Dispatched console commands by command and status",
		},
		[]string{"command", "status"},
	)

	r.ConsoleAuditPurgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "bottlecell_console_audit_purges_total",
			Help: "Audit trail purge operations",
		},
	)

	r.ConsoleActiveSessions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bottlecell_console_active_sessions",
			Help: "Authenticated console sessions",
		},
	)
}

func (r *Registry) initScenarioMetrics() {
	r.ScenarioRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_scenario_runs_total",
			Help: "Scenario runs by scenario and terminal outcome",
		},
		[]string{"scenario", "outcome"},
	)

	r.ScenarioStepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bottlecell_scenario_steps_total",
			Help: "Executed scenario steps by kind and status",
		},
		[]string{"kind", "status"},
	)

	r.ScenarioRunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bottlecell_scenario_run_duration_seconds",
			Help:    "Wall time of scenario runs",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"scenario"},
	)
}
