// Package retrypolicy provides a Policy that re-invokes the inner chain a
// bounded number of times with a fixed delay between attempts.
package retrypolicy

import (
	"time"

	"github.com/inventhq/failsafe-go"
)

// Policy bounds re-invocation of its inner chain to retries total attempts,
// sleeping delay between each. It uses the default RunGuarded — an attempt
// is exactly one Operation.Execute call — and only customizes PolicyAction
// and Reset.
//
// This type is not concurrency safe; build one Policy per goroutine that
// runs concurrently, or guard it with a mutex.
type Policy[F any] struct {
	*failsafe.BasePolicy[F]

	retries int
	delay   time.Duration
	sleeper failsafe.Sleeper
	hooks   *failsafe.Hooks

	tries int
}

var _ failsafe.Policy[any] = (*Policy[any])(nil)

// New returns a retry Policy that performs up to retries total attempts
// (not retries+1), sleeping delay between each. retries must be at least 1;
// delay may be zero.
func New[F any](retries int, delay time.Duration) *Policy[F] {
	return newPolicy[F](retries, delay, failsafe.RealSleeper{}, nil)
}

// NewWithHooks is like New but also reports retry lifecycle events via
// hooks, the engine's substitute for logging since the core performs no I/O.
func NewWithHooks[F any](retries int, delay time.Duration, hooks *failsafe.Hooks) *Policy[F] {
	return newPolicy[F](retries, delay, failsafe.RealSleeper{}, hooks)
}

// newWithSleeper exists so tests can substitute a fake Sleeper instead of
// sleeping for real.
func newWithSleeper[F any](retries int, delay time.Duration, sleeper failsafe.Sleeper) *Policy[F] {
	return newPolicy[F](retries, delay, sleeper, nil)
}

func newPolicy[F any](retries int, delay time.Duration, sleeper failsafe.Sleeper, hooks *failsafe.Hooks) *Policy[F] {
	if retries < 1 {
		retries = 1
	}
	p := &Policy[F]{
		BasePolicy: failsafe.NewBasePolicy[F]("RetryPolicy"),
		retries:    retries,
		delay:      delay,
		sleeper:    sleeper,
		hooks:      hooks,
	}
	p.SetSelf(p)
	return p
}

// PolicyAction increments the try counter. Once it reaches retries, the
// counter resets to zero and RetryError is returned. Otherwise the policy
// sleeps for delay and requests another attempt.
func (p *Policy[F]) PolicyAction(_ failsafe.Operation[F]) (failsafe.ActionState, error) {
	p.tries++
	if p.tries >= p.retries {
		err := failsafe.ErrRetryExceeded()
		p.hooks.EmitRetriesExceeded(err)
		p.tries = 0
		return failsafe.ActionRetry, err
	}
	p.hooks.EmitRetry(p.tries, nil)
	p.sleeper.Sleep(p.delay)
	return failsafe.ActionRetry, nil
}

// Reset zeroes the try counter and recursively resets the inner policy.
func (p *Policy[F]) Reset() {
	p.tries = 0
	p.ResetInner()
}
