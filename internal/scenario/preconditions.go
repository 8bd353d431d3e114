package scenario

import (
	"context"
	"fmt"

	"github.com/Amir23156/BottleAsec/internal/tag"
)

// PreviousSucceeded requires the previous step's result to be OK.
type PreviousSucceeded struct{}

func (PreviousSucceeded) Check(_ context.Context, _ *Env, prev Result) error {
	if !prev.OK {
		return fmt.Errorf("%w: previous step did not succeed", ErrPreconditionFailed)
	}
	return nil
}

// HasSession requires a console session obtained earlier in the run.
type HasSession struct{}

func (HasSession) Check(_ context.Context, env *Env, _ Result) error {
	if env.Session == nil {
		return fmt.Errorf("%w: no console session", ErrPreconditionFailed)
	}
	return nil
}

// HasEmergencyAccess requires a session with emergency access.
type HasEmergencyAccess struct{}

func (HasEmergencyAccess) Check(_ context.Context, env *Env, _ Result) error {
	if env.Session == nil || !env.Session.EmergencyAccess {
		return fmt.Errorf("%w: no emergency access", ErrPreconditionFailed)
	}
	return nil
}

// TagAbove requires a live tag value strictly above Threshold.
type TagAbove struct {
	Tag       tag.ID
	Threshold float64
}

func (p TagAbove) Check(ctx context.Context, env *Env, _ Result) error {
	v, err := env.Store.Read(ctx, p.Tag)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	if v <= p.Threshold {
		return fmt.Errorf("%w: %s=%.2f not above %.2f", ErrPreconditionFailed, p.Tag, v, p.Threshold)
	}
	return nil
}

// TagBelow requires a live tag value strictly below Threshold.
type TagBelow struct {
	Tag       tag.ID
	Threshold float64
}

func (p TagBelow) Check(ctx context.Context, env *Env, _ Result) error {
	v, err := env.Store.Read(ctx, p.Tag)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	if v >= p.Threshold {
		return fmt.Errorf("%w: %s=%.2f not below %.2f", ErrPreconditionFailed, p.Tag, v, p.Threshold)
	}
	return nil
}
