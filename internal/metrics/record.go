package metrics

import "time"

var arbitrationStates = []string{"automatic", "emergency"}

// RecordTick counts a control tick and publishes the group state.
func (r *Registry) RecordTick(state string) {
	if r == nil {
		return
	}
	r.ControlTicksTotal.WithLabelValues(state).Inc()
	for _, s := range arbitrationStates {
		if s == state {
			r.ControlArbitrationState.WithLabelValues(s).Set(1)
		} else {
			r.ControlArbitrationState.WithLabelValues(s).Set(0)
		}
	}
}

// RecordTransportError counts a failed tag operation in the loop.
func (r *Registry) RecordTransportError(op, code string) {
	if r == nil {
		return
	}
	r.ControlTransportErrors.WithLabelValues(op, code).Inc()
}

// RecordEmergency counts an emergency stamp.
func (r *Registry) RecordEmergency(reason string) {
	if r == nil {
		return
	}
	r.ControlEmergencyTriggers.WithLabelValues(reason).Inc()
}

// RecordActuatorWrite counts an automatic actuator command.
func (r *Registry) RecordActuatorWrite(tagID string) {
	if r == nil {
		return
	}
	r.ControlActuatorWritesTotal.WithLabelValues(tagID).Inc()
}

// RecordAuth counts a login attempt; legacy marks a privileged-access grant.
func (r *Registry) RecordAuth(ok, legacy bool) {
	if r == nil {
		return
	}
	if !ok {
		r.ConsoleAuthAttemptsTotal.WithLabelValues("failure").Inc()
		return
	}
	r.ConsoleAuthAttemptsTotal.WithLabelValues("success").Inc()
	r.ConsoleActiveSessions.Inc()
	if legacy {
		r.ConsolePrivilegedAccess.Inc()
	}
}

// RecordLogout decrements the active session gauge.
func (r *Registry) RecordLogout() {
	if r == nil {
		return
	}
	r.ConsoleActiveSessions.Dec()
}

// RecordCommand counts a dispatched console command.
func (r *Registry) RecordCommand(command, status string) {
	if r == nil {
		return
	}
	r.ConsoleCommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordAuditPurge counts a purge of the command audit trail.
func (r *Registry) RecordAuditPurge() {
	if r == nil {
		return
	}
	r.ConsoleAuditPurgesTotal.Inc()
}

// RecordStep counts one executed scenario step.
func (r *Registry) RecordStep(kind, status string) {
	if r == nil {
		return
	}
	r.ScenarioStepsTotal.WithLabelValues(kind, status).Inc()
}

// RecordScenario counts a terminal scenario run.
func (r *Registry) RecordScenario(name, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.ScenarioRunsTotal.WithLabelValues(name, outcome).Inc()
	r.ScenarioRunDuration.WithLabelValues(name).Observe(duration.Seconds())
}
