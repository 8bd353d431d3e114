package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Scenario errors.
var (
	ErrPreconditionFailed = errors.New("PRECONDITION_FAILED")
	ErrUnknownScenario    = errors.New("UNKNOWN_SCENARIO")
	ErrNoConsole          = errors.New("NO_CONSOLE")
)

// Host is a node of the simulated plant network.
type Host struct {
	Name       string
	Address    string
	Network    string
	Role       string
	Interfaces []string
	Services   []string
}

// Env is the state shared by the steps of one run.
type Env struct {
	Store    tag.Store
	Console  *console.Console
	Topology []Host
	Clock    clock.Clock
	// Session is set by a successful credential attempt.
	Session *console.Session
}

// Result is what an action produced. OK false means the action ran but did
// not get what it was after; that is not an error.
type Result struct {
	OK      bool
	Message string
	Hosts   []Host
	Values  map[tag.ID]float64
}

// Action is the work of one step.
type Action interface {
	Kind() string
	Do(ctx context.Context, env *Env) (Result, error)
}

// Precondition gates a step on the previous result or live tag state.
type Precondition interface {
	Check(ctx context.Context, env *Env, prev Result) error
}

// Step is one unit of a scenario.
type Step struct {
	Description  string
	Action       Action
	Precondition Precondition
}

// Scenario is a named step list.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
}

// OutcomeKind is the terminal state of a run.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	AbortedAtStep
	Error
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case AbortedAtStep:
		return "aborted"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal outcome of a run. Step is the 0-based index of the
// step whose precondition failed; Reason explains an Error and Err carries
// the underlying error when there is one.
type Outcome struct {
	Kind   OutcomeKind
	Step   int
	Reason string
	Err    error
}

func (o Outcome) String() string {
	switch o.Kind {
	case AbortedAtStep:
		return fmt.Sprintf("aborted at step %d", o.Step)
	case Error:
		return "error: " + o.Reason
	default:
		return o.Kind.String()
	}
}

// ScenarioRun is the record of one execution.
type ScenarioRun struct {
	ID             string
	Name           string
	Steps          []Step
	StartedAt      time.Time
	EndedAt        time.Time
	StepsCompleted int
	Outcome        Outcome
}

// Duration is the wall time of the run.
func (r ScenarioRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
