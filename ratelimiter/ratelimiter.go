// Package ratelimiter provides a Policy implementing a token-bucket
// admission limiter, in either a continuously-refilling ("Smooth") or a
// window-reset ("Burst") style.
package ratelimiter

import (
	"sync/atomic"
	"time"

	"github.com/inventhq/failsafe-go"
)

// Kind selects how the token bucket replenishes.
type Kind int

const (
	// Smooth releases permits continuously at maxExecution/duration.
	Smooth Kind = iota
	// Burst makes the full maxExecution capacity available again at each
	// duration window boundary, rather than smoothing the refill.
	Burst
)

// fixedPointScale gives nanosecond-level precision to fractional tokens
// when accounted for as integers.
const fixedPointScale int64 = 1_000_000_000

// pollInterval is how often a blocking Policy re-checks for an available
// permit while waiting.
const pollInterval = time.Millisecond

// Policy admits at most maxExecution calls per duration, either blocking
// the caller until a permit is available or rejecting immediately,
// depending on which constructor built it. Token accounting is a lock-free
// CAS-based token bucket, refilled lazily on each admission check rather
// than by a background goroutine — the engine starts no goroutines of its
// own.
//
// Unlike retry and circuit-breaker state, there is nothing for this policy
// to clear on success: refilling is purely a function of elapsed time, so
// Reset only propagates to the inner policy.
type Policy[F any] struct {
	*failsafe.BasePolicy[F]

	kind         Kind
	maxExecution int64
	duration     time.Duration
	blocking     bool
	clock        failsafe.Clock
	sleeper      failsafe.Sleeper
	hooks        *failsafe.Hooks

	rate     float64 // tokens per second, Smooth only
	capacity int64   // fixed-point

	tokens        atomic.Int64
	lastRefill    atomic.Int64 // unix nano, Smooth only
	windowStart   atomic.Int64 // unix nano, Burst only

	rejected bool
	lastErr  error
}

var _ failsafe.Policy[any] = (*Policy[any])(nil)

// New returns a rate-limiter Policy that blocks the caller until a permit
// becomes available. maxExecution must be at least 1 and duration greater
// than zero.
func New[F any](kind Kind, maxExecution int, duration time.Duration) *Policy[F] {
	return newPolicy[F](kind, maxExecution, duration, true, failsafe.RealClock{}, failsafe.RealSleeper{}, nil)
}

// NewNonBlocking returns a rate-limiter Policy that rejects a call
// immediately with KindRateLimitExceeded instead of waiting for a permit.
func NewNonBlocking[F any](kind Kind, maxExecution int, duration time.Duration) *Policy[F] {
	return newPolicy[F](kind, maxExecution, duration, false, failsafe.RealClock{}, failsafe.RealSleeper{}, nil)
}

// NewWithHooks is like New but also reports rejected/blocked admissions via
// hooks.
func NewWithHooks[F any](kind Kind, maxExecution int, duration time.Duration, blocking bool, hooks *failsafe.Hooks) *Policy[F] {
	return newPolicy[F](kind, maxExecution, duration, blocking, failsafe.RealClock{}, failsafe.RealSleeper{}, hooks)
}

// newWithClock exists so tests can substitute a fake Clock/Sleeper instead
// of waiting for real.
func newWithClock[F any](kind Kind, maxExecution int, duration time.Duration, blocking bool, clock failsafe.Clock, sleeper failsafe.Sleeper) *Policy[F] {
	return newPolicy[F](kind, maxExecution, duration, blocking, clock, sleeper, nil)
}

func newPolicy[F any](kind Kind, maxExecution int, duration time.Duration, blocking bool, clock failsafe.Clock, sleeper failsafe.Sleeper, hooks *failsafe.Hooks) *Policy[F] {
	if maxExecution < 1 {
		maxExecution = 1
	}
	p := &Policy[F]{
		BasePolicy:   failsafe.NewBasePolicy[F]("RateLimiterPolicy"),
		kind:         kind,
		maxExecution: int64(maxExecution),
		duration:     duration,
		blocking:     blocking,
		clock:        clock,
		sleeper:      sleeper,
		hooks:        hooks,
		capacity:     int64(maxExecution) * fixedPointScale,
		rate:         float64(maxExecution) / duration.Seconds(),
	}
	p.tokens.Store(p.capacity)
	now := clock.Now().UnixNano()
	p.lastRefill.Store(now)
	p.windowStart.Store(now)
	p.SetSelf(p)
	return p
}

// RunGuarded admits the call (waiting or rejecting per configuration) and,
// once admitted, invokes op.Execute exactly once.
func (p *Policy[F]) RunGuarded(op failsafe.Operation[F]) error {
	p.rejected = false

	if p.tryAcquire() {
		return p.invoke(op)
	}

	if !p.blocking {
		p.rejected = true
		p.lastErr = failsafe.ErrLimitExceeded()
		p.hooks.EmitRateLimited(0)
		return p.lastErr
	}

	waited := time.Duration(0)
	for !p.tryAcquire() {
		p.sleeper.Sleep(pollInterval)
		waited += pollInterval
	}
	if waited > 0 {
		p.hooks.EmitRateLimited(waited)
	}
	return p.invoke(op)
}

func (p *Policy[F]) invoke(op failsafe.Operation[F]) error {
	if err := op.Execute(); err != nil {
		p.lastErr = failsafe.WrapRunnableError(err)
		return p.lastErr
	}
	p.lastErr = nil
	return nil
}

// tryAcquire refills based on elapsed time and attempts to take one token,
// using CAS loops so the bucket stays consistent without a lock.
func (p *Policy[F]) tryAcquire() bool {
	p.refill()
	for {
		current := p.tokens.Load()
		if current < fixedPointScale {
			return false
		}
		if p.tokens.CompareAndSwap(current, current-fixedPointScale) {
			return true
		}
	}
}

func (p *Policy[F]) refill() {
	switch p.kind {
	case Burst:
		p.refillBurst()
	default:
		p.refillSmooth()
	}
}

// refillSmooth adds tokens continuously at rate tokens/second, capped at
// capacity.
func (p *Policy[F]) refillSmooth() {
	for {
		oldLast := p.lastRefill.Load()
		now := p.clock.Now().UnixNano()
		elapsed := now - oldLast
		if elapsed <= 0 {
			return
		}
		if !p.lastRefill.CompareAndSwap(oldLast, now) {
			continue
		}
		add := int64(float64(elapsed) * p.rate)
		if add <= 0 {
			return
		}
		for {
			old := p.tokens.Load()
			next := old + add
			if next > p.capacity {
				next = p.capacity
			}
			if p.tokens.CompareAndSwap(old, next) {
				return
			}
		}
	}
}

// refillBurst snaps the bucket back to full capacity once duration has
// elapsed since the start of the current window, rather than smoothing the
// refill across it.
func (p *Policy[F]) refillBurst() {
	for {
		start := p.windowStart.Load()
		now := p.clock.Now().UnixNano()
		if time.Duration(now-start) < p.duration {
			return
		}
		if !p.windowStart.CompareAndSwap(start, now) {
			continue
		}
		p.tokens.Store(p.capacity)
		return
	}
}

// PolicyAction is terminal: the rate limiter never retries at this level.
// A rejected admission propagates KindRateLimitExceeded; any operation
// failure after admission is propagated unchanged.
func (p *Policy[F]) PolicyAction(_ failsafe.Operation[F]) (failsafe.ActionState, error) {
	return failsafe.ActionRetry, p.lastErr
}

// Reset only propagates to the inner policy; there is no limiter-owned
// transient state to clear, since refilling is purely a function of time.
func (p *Policy[F]) Reset() {
	p.ResetInner()
}
