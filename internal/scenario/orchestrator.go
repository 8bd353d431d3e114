package scenario

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// StepLog receives one timestamped line per attempted step, per scenario.
type StepLog interface {
	Append(name, message string) error
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Store    tag.Store
	Console  *console.Console
	Topology []Host
	Clock    clock.Clock
	// Progress receives the human-readable step lines.
	Progress io.Writer
	Log      StepLog
	Logger   *log.Logger
	Metrics  *metrics.Registry
}

// Orchestrator executes scenarios from its catalog.
type Orchestrator struct {
	deps      Deps
	scenarios map[string]Scenario
}

// New creates an orchestrator over the given scenarios.
func New(deps Deps, scenarios []Scenario) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Progress == nil {
		deps.Progress = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	o := &Orchestrator{deps: deps, scenarios: make(map[string]Scenario, len(scenarios))}
	for _, s := range scenarios {
		o.scenarios[s.Name] = s
	}
	return o
}

// Names lists the catalog in name order.
func (o *Orchestrator) Names() []string {
	names := make([]string, 0, len(o.scenarios))
	for n := range o.scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a catalog scenario.
func (o *Orchestrator) Lookup(name string) (Scenario, bool) {
	s, ok := o.scenarios[name]
	return s, ok
}

// Run executes the named scenario and returns its terminal record.
func (o *Orchestrator) Run(ctx context.Context, name string) ScenarioRun {
	sc, ok := o.scenarios[name]
	if !ok {
		now := o.deps.Clock.Now()
		err := fmt.Errorf("%w: %s", ErrUnknownScenario, name)
		run := ScenarioRun{
			ID:        uuid.NewString(),
			Name:      name,
			StartedAt: now,
			EndedAt:   now,
			Outcome:   Outcome{Kind: Error, Reason: err.Error(), Err: err},
		}
		o.finish(run)
		return run
	}
	return o.Execute(ctx, sc)
}

// Execute runs an arbitrary scenario through the same engine.
func (o *Orchestrator) Execute(ctx context.Context, sc Scenario) ScenarioRun {
	steps := make([]Step, len(sc.Steps))
	copy(steps, sc.Steps)

	run := ScenarioRun{
		ID:        uuid.NewString(),
		Name:      sc.Name,
		Steps:     steps,
		StartedAt: o.deps.Clock.Now(),
		Outcome:   Outcome{Kind: Success},
	}
	o.deps.Logger.Printf("scenario: %s started (run %s, %d steps)", sc.Name, run.ID, len(steps))

	env := &Env{
		Store:    o.deps.Store,
		Console:  o.deps.Console,
		Topology: o.deps.Topology,
		Clock:    o.deps.Clock,
	}
	prev := Result{OK: true}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			run.Outcome = Outcome{Kind: Error, Reason: fmt.Sprintf("cancelled before step %d: %v", i, err), Err: err}
			break
		}

		res, checkErr, doErr := o.attempt(ctx, env, step, prev)
		kind := kindOf(step)

		switch {
		case checkErr != nil:
			o.emit(sc.Name, i, len(steps), step, "precondition failed: "+checkErr.Error())
			o.deps.Metrics.RecordStep(kind, "precondition_failed")
			run.Outcome = Outcome{Kind: AbortedAtStep, Step: i}
		case doErr != nil:
			o.emit(sc.Name, i, len(steps), step, "ERROR: "+doErr.Error())
			o.deps.Metrics.RecordStep(kind, "error")
			run.Outcome = Outcome{Kind: Error, Reason: fmt.Sprintf("step %d (%s): %v", i, kind, doErr), Err: doErr}
		default:
			status := "ok"
			if !res.OK {
				status = "no result"
			}
			if res.Message != "" {
				status += ": " + res.Message
			}
			o.emit(sc.Name, i, len(steps), step, status)
			o.deps.Metrics.RecordStep(kind, statusLabel(res))
			run.StepsCompleted++
			prev = res
			continue
		}
		break
	}

	run.EndedAt = o.deps.Clock.Now()
	o.finish(run)
	return run
}

// attempt checks the precondition and runs the action, turning panics into
// action errors
func (o *Orchestrator) attempt(ctx context.Context, env *Env, step Step, prev Result) (res Result, checkErr, doErr error) {
	defer func() {
		if r := recover(); r != nil {
			doErr = fmt.Errorf("panic: %v", r)
		}
	}()

	if step.Precondition != nil {
		if err := step.Precondition.Check(ctx, env, prev); err != nil {
			return Result{}, err, nil
		}
	}
	if step.Action == nil {
		return Result{}, nil, fmt.Errorf("step has no action")
	}
	res, doErr = step.Action.Do(ctx, env)
	return res, nil, doErr
}

// emit writes the progress line and the log line of one attempted step
func (o *Orchestrator) emit(name string, i, total int, step Step, status string) {
	fmt.Fprintf(o.deps.Progress, "[%s] step %d/%d %s: %s\n", name, i+1, total, step.Description, status)

	if o.deps.Log == nil {
		return
	}
	msg := fmt.Sprintf("STEP %d: %s - %s", i+1, step.Description, status)
	if err := o.deps.Log.Append(name, msg); err != nil {
		o.deps.Logger.Printf("scenario: failed to write step log for %s: %v", name, err)
	}
}

func (o *Orchestrator) finish(run ScenarioRun) {
	o.deps.Logger.Printf("scenario: %s finished: %s (%d/%d steps, %v)",
		run.Name, run.Outcome, run.StepsCompleted, len(run.Steps), run.Duration())
	o.deps.Metrics.RecordScenario(run.Name, run.Outcome.Kind.String(), run.Duration())
}

func kindOf(step Step) string {
	if step.Action == nil {
		return "none"
	}
	return step.Action.Kind()
}

func statusLabel(res Result) string {
	if res.OK {
		return "ok"
	}
	return "no_result"
}
