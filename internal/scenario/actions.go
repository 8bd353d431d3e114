package scenario

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Amir23156/BottleAsec/internal/console"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Probe looks up hosts of the simulated topology. Empty filters match all;
// the probe succeeds when at least one host matches.
type Probe struct {
	Network    string
	Address    string
	Role       string
	Interfaces []string
	Service    string
}

func (Probe) Kind() string { return "probe" }

func (p Probe) Do(ctx context.Context, env *Env) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var subnet *net.IPNet
	if p.Network != "" {
		_, n, err := net.ParseCIDR(p.Network)
		if err != nil {
			return Result{}, fmt.Errorf("bad probe network %q: %w", p.Network, err)
		}
		subnet = n
	}

	var found []Host
	for _, h := range env.Topology {
		if subnet != nil && !subnet.Contains(net.ParseIP(h.Address)) {
			continue
		}
		if p.Address != "" && h.Address != p.Address {
			continue
		}
		if p.Role != "" && h.Role != p.Role {
			continue
		}
		if !hasAll(h.Interfaces, p.Interfaces) {
			continue
		}
		if p.Service != "" && !hasService(h.Services, p.Service) {
			continue
		}
		found = append(found, h)
	}

	if len(found) == 0 {
		return Result{OK: false, Message: "no matching host"}, nil
	}

	addrs := make([]string, len(found))
	for i, h := range found {
		addrs[i] = h.Address
	}
	return Result{
		OK:      true,
		Message: fmt.Sprintf("discovered %s", strings.Join(addrs, ", ")),
		Hosts:   found,
	}, nil
}

// Credential is a username/password guess.
type Credential struct {
	Username string
	Password string
}

// CredentialAttempt tries each credential on the console until one works.
type CredentialAttempt struct {
	Credentials []Credential
}

func (CredentialAttempt) Kind() string { return "credential-attempt" }

func (a CredentialAttempt) Do(ctx context.Context, env *Env) (Result, error) {
	if env.Console == nil {
		return Result{}, ErrNoConsole
	}

	tried := 0
	for _, c := range a.Credentials {
		tried++
		env.Console.BeginLogin()
		s, err := env.Console.Authenticate(ctx, c.Username, c.Password)
		if errors.Is(err, console.ErrAuthFailure) {
			continue
		}
		if err != nil {
			return Result{}, err
		}

		env.Session = s
		msg := fmt.Sprintf("authenticated as %s after %d attempts", s.Username, tried)
		if s.EmergencyAccess {
			msg += " (emergency access)"
		}
		return Result{OK: true, Message: msg}, nil
	}
	return Result{OK: false, Message: fmt.Sprintf("%d credentials rejected", tried)}, nil
}

// ReadTag reads tags from the store.
type ReadTag struct {
	Tags []tag.ID
}

func (ReadTag) Kind() string { return "read-tag" }

func (r ReadTag) Do(ctx context.Context, env *Env) (Result, error) {
	values := make(map[tag.ID]float64, len(r.Tags))
	parts := make([]string, 0, len(r.Tags))
	for _, id := range r.Tags {
		v, err := env.Store.Read(ctx, id)
		if err != nil {
			return Result{}, err
		}
		values[id] = v
		parts = append(parts, fmt.Sprintf("%s=%.2f", id, v))
	}
	return Result{OK: true, Message: strings.Join(parts, " "), Values: values}, nil
}

// TagValue is one tag assignment.
type TagValue struct {
	Tag   tag.ID
	Value float64
}

// WriteTag writes straight to the store, bypassing the console.
type WriteTag struct {
	Writes []TagValue
}

func (WriteTag) Kind() string { return "write-tag" }

func (w WriteTag) Do(ctx context.Context, env *Env) (Result, error) {
	parts := make([]string, 0, len(w.Writes))
	for _, tv := range w.Writes {
		if err := env.Store.Write(ctx, tv.Tag, tv.Value); err != nil {
			return Result{}, err
		}
		parts = append(parts, fmt.Sprintf("%s<-%g", tv.Tag, tv.Value))
	}
	return Result{OK: true, Message: strings.Join(parts, " ")}, nil
}

// Wait pauses the run. It ends early with an error when ctx is done.
type Wait struct {
	Duration time.Duration
}

func (Wait) Kind() string { return "wait" }

func (w Wait) Do(ctx context.Context, env *Env) (Result, error) {
	select {
	case <-env.Clock.After(w.Duration):
		return Result{OK: true, Message: fmt.Sprintf("waited %v", w.Duration)}, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// ConsoleCommand dispatches a console command with the run's session.
type ConsoleCommand struct {
	Command console.CommandID
	Sub     int
	// Confirm answers the confirmation prompt of destructive commands.
	Confirm bool
}

func (ConsoleCommand) Kind() string { return "console-command" }

func (c ConsoleCommand) Do(ctx context.Context, env *Env) (Result, error) {
	if env.Console == nil {
		return Result{}, ErrNoConsole
	}

	confirm := c.Confirm
	res := env.Console.Dispatch(ctx, env.Session, c.Command, console.Args{
		Sub:     c.Sub,
		Confirm: func(console.Command) bool { return confirm },
	})

	switch res.Status {
	case console.Executed:
		return Result{OK: true, Message: fmt.Sprintf("command %d executed (%d writes)", int(c.Command), len(res.Writes))}, nil
	case console.Failed:
		return Result{}, res.Err
	default:
		msg := fmt.Sprintf("command %d %s", int(c.Command), res.Status)
		if res.Err != nil {
			msg += ": " + res.Err.Error()
		}
		return Result{OK: false, Message: msg}, nil
	}
}

// PurgeAudit erases the console audit records of the run's session user.
type PurgeAudit struct{}

func (PurgeAudit) Kind() string { return "purge-audit" }

func (PurgeAudit) Do(ctx context.Context, env *Env) (Result, error) {
	if env.Console == nil {
		return Result{}, ErrNoConsole
	}
	if env.Session == nil {
		return Result{OK: false, Message: "no session"}, nil
	}

	n, err := env.Console.PurgeAudit(ctx, env.Session, env.Session.Username)
	if errors.Is(err, console.ErrForbidden) || errors.Is(err, console.ErrNotAuthenticated) {
		return Result{OK: false, Message: err.Error()}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{OK: true, Message: fmt.Sprintf("removed %d audit records of %s", n, env.Session.Username)}, nil
}

// Observe samples a tag at an interval.
type Observe struct {
	Tag      tag.ID
	Samples  int
	Interval time.Duration
}

func (Observe) Kind() string { return "observe" }

func (o Observe) Do(ctx context.Context, env *Env) (Result, error) {
	samples := o.Samples
	if samples <= 0 {
		samples = 1
	}

	parts := make([]string, 0, samples)
	var last float64
	for i := 0; i < samples; i++ {
		if _, err := (Wait{Duration: o.Interval}).Do(ctx, env); err != nil {
			return Result{}, err
		}
		v, err := env.Store.Read(ctx, o.Tag)
		if err != nil {
			return Result{}, err
		}
		last = v
		parts = append(parts, fmt.Sprintf("%.2f", v))
	}
	return Result{
		OK:      true,
		Message: fmt.Sprintf("%s samples %s", o.Tag, strings.Join(parts, " ")),
		Values:  map[tag.ID]float64{o.Tag: last},
	}, nil
}

func hasAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// hasService matches "modbus" against entries like "modbus/502"
func hasService(services []string, name string) bool {
	for _, s := range services {
		if s == name || strings.HasPrefix(s, name+"/") {
			return true
		}
	}
	return false
}
