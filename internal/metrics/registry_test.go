package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.RecordTick("automatic")
	r.RecordTransportError("read", "STALE_READ")
	r.RecordEmergency("bound")
	r.RecordActuatorWrite("tank_input_valve_status")
	r.RecordAuth(true, true)
	r.RecordLogout()
	r.RecordCommand("full-stop", "executed")
	r.RecordAuditPurge()
	r.RecordStep("probe", "ok")
	r.RecordScenario("x", "success", time.Second)
}

func TestRecordTickFlipsStateGauge(t *testing.T) {
	r := NewRegistry()

	r.RecordTick("emergency")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ControlArbitrationState.WithLabelValues("emergency")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ControlArbitrationState.WithLabelValues("automatic")))

	r.RecordTick("automatic")
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ControlArbitrationState.WithLabelValues("emergency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ControlArbitrationState.WithLabelValues("automatic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ControlTicksTotal.WithLabelValues("automatic")))
}

func TestRecordAuth(t *testing.T) {
	r := NewRegistry()

	r.RecordAuth(false, false)
	r.RecordAuth(true, true)
	r.RecordAuth(true, false)
	r.RecordLogout()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConsoleAuthAttemptsTotal.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ConsoleAuthAttemptsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConsolePrivilegedAccess))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConsoleActiveSessions))
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordScenario("tank-overflow-attack", "success", 50*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bottlecell_scenario_runs_total"))
}
