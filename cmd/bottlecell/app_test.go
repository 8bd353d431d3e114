package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/config"
	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/scenario"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Scenario.LogDir = t.TempDir()
	cfg.Scenario.PaceMs = 0
	return &app{
		cfg:     cfg,
		logger:  log.New(io.Discard, "", 0),
		metrics: metrics.NewRegistry(),
		clock:   clock.Real{},
	}
}

func TestLoopConfigFromControlSection(t *testing.T) {
	cfg := config.Default().Control
	lc := loopConfig(cfg)
	assert.Equal(t, cfg.TankBoundCeiling, lc.TankBoundCeiling)
	assert.Equal(t, cfg.CriticalTankLevel, lc.CriticalTankLevel)
	assert.Equal(t, 30*time.Second, lc.EmergencyTimeout)
}

func TestAccountsFrom(t *testing.T) {
	accounts := accountsFrom(config.Default().Console.Accounts)
	require.Len(t, accounts, 4)
	assert.Equal(t, console.Account{Username: "john_smith", Password: "123456", Legacy: true}, accounts[1])
}

func TestAttackWiring(t *testing.T) {
	a := testApp(t)
	store := tag.NewMemory()

	con, err := a.newConsole(store)
	require.NoError(t, err)

	var progress bytes.Buffer
	orch, err := a.newOrchestrator(store, con, &progress)
	require.NoError(t, err)

	run := orch.Run(context.Background(), scenario.LegacyHMI3Attack)
	require.Equal(t, scenario.Success, run.Outcome.Kind, run.Outcome.String())
	assert.NoError(t, report(run))

	loop := a.newLoop(store)
	loop.Tick(context.Background())
	assert.Equal(t, "emergency", loop.State().String())

	a.close()

	audit, err := os.ReadFile(filepath.Join(a.cfg.Scenario.LogDir, auditFile))
	require.NoError(t, err)
	assert.Contains(t, string(audit), `"command":"safety-limit-override"`)

	steps, err := os.ReadFile(filepath.Join(a.cfg.Scenario.LogDir, "log-"+scenario.LegacyHMI3Attack+".txt"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(steps)), "\n"), len(run.Steps))
}

func TestReportFailedRun(t *testing.T) {
	run := scenario.ScenarioRun{Name: "x", Outcome: scenario.Outcome{Kind: scenario.AbortedAtStep, Step: 2}}
	err := report(run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted at step 2")
}

func TestScenariosCommandListsCatalog(t *testing.T) {
	var out bytes.Buffer
	scenariosCmd.SetOut(&out)
	scenariosCmd.Run(scenariosCmd, nil)

	for _, sc := range scenario.Catalog(0) {
		assert.Contains(t, out.String(), sc.Name)
	}
}
