// Package timeout provides a Policy that bounds a single guarded invocation
// by elapsed wall-clock time.
package timeout

import (
	"time"

	"github.com/inventhq/failsafe-go"
)

// Policy measures how long a single guarded invocation takes and fails it
// with a timeout error if it runs longer than Duration. Because Go cannot
// safely preempt an arbitrary running goroutine, the measurement is
// post-hoc: the operation always runs to completion, and a slow-but-
// eventually-successful attempt is still reported as a timeout.
//
// The measurement lives in RunGuarded, which the driver calls only on the
// innermost policy of a stack, so it takes place only when Policy sits at
// the bottom, directly wrapping the Operation. PolicyAction and Reset are
// overridden to report and clear the recorded outcome.
type Policy[F any] struct {
	*failsafe.BasePolicy[F]

	duration time.Duration
	clock    failsafe.Clock
	hooks    *failsafe.Hooks

	timedOut bool
	lastErr  error
}

var _ failsafe.Policy[any] = (*Policy[any])(nil)

// New returns a timeout Policy bounding each guarded invocation to d, which
// must be greater than zero.
func New[F any](d time.Duration) *Policy[F] {
	return newPolicy[F](d, failsafe.RealClock{}, nil)
}

// NewWithHooks is like New but also reports timeout events via hooks.
func NewWithHooks[F any](d time.Duration, hooks *failsafe.Hooks) *Policy[F] {
	return newPolicy[F](d, failsafe.RealClock{}, hooks)
}

// newWithClock exists so tests can substitute a fake Clock.
func newWithClock[F any](d time.Duration, clock failsafe.Clock) *Policy[F] {
	return newPolicy[F](d, clock, nil)
}

func newPolicy[F any](d time.Duration, clock failsafe.Clock, hooks *failsafe.Hooks) *Policy[F] {
	p := &Policy[F]{
		BasePolicy: failsafe.NewBasePolicy[F]("TimeoutPolicy"),
		duration:   d,
		clock:      clock,
		hooks:      hooks,
	}
	p.SetSelf(p)
	return p
}

// RunGuarded invokes op.Execute exactly once, synchronously, and measures
// elapsed time against the configured duration. An operation that exceeds
// the deadline is reported as a timeout regardless of whether it eventually
// succeeded; an operation that finishes within the deadline is reported as
// a RunnableError on failure, exactly like the default guarded invocation.
func (p *Policy[F]) RunGuarded(op failsafe.Operation[F]) error {
	start := p.clock.Now()
	execErr := op.Execute()
	elapsed := p.clock.Now().Sub(start)

	if elapsed > p.duration {
		p.timedOut = true
		p.lastErr = failsafe.ErrTimeoutExceeded()
		p.hooks.EmitTimeout(elapsed)
		return p.lastErr
	}
	p.timedOut = false
	if execErr != nil {
		p.lastErr = failsafe.WrapRunnableError(execErr)
		return p.lastErr
	}
	p.lastErr = nil
	return nil
}

// PolicyAction is terminal: a timeout is never retried at this level — wrap
// the policy with retrypolicy if retries are wanted. A RunGuarded failure
// that was not a timeout is propagated unchanged, since this policy has no
// other way to recover it.
func (p *Policy[F]) PolicyAction(_ failsafe.Operation[F]) (failsafe.ActionState, error) {
	return failsafe.ActionRetry, p.lastErr
}

// Reset clears the recorded error state and recursively resets the inner
// policy.
func (p *Policy[F]) Reset() {
	p.timedOut = false
	p.lastErr = nil
	p.ResetInner()
}
