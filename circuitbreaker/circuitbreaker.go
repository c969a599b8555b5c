// Package circuitbreaker provides a Policy implementing a three-state
// (Closed/Open/HalfOpen) circuit breaker.
package circuitbreaker

import (
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/inventhq/failsafe-go"
)

// State is one of the breaker's three admission states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

// Policy rejects calls once FailureThreshold consecutive failures have been
// observed, waits Delay before probing again, and requires SuccessThreshold
// consecutive successes in HalfOpen before fully closing. It overrides
// RunGuarded to implement admission and to count HalfOpen successes, and
// uses PolicyAction only to update the failure side of the state machine.
// Closing lives in Reset, since Reset — not PolicyAction — is what the
// driver calls on every successful guarded invocation; Reset is also reached
// through each enclosing policy's Reset, so it acts on the count RunGuarded
// recorded instead of counting a success itself.
type Policy[F any] struct {
	*failsafe.BasePolicy[F]

	failureThreshold int
	delay            time.Duration
	successThreshold int
	clock            failsafe.Clock
	hooks            *failsafe.Hooks

	state        State
	failureCount int
	successCount int
	lastAttempt  time.Time

	rejected bool
	lastErr  error

	outcomes     *bitset.BitSet
	outcomeIdx   uint
	outcomeCount uint
}

var _ failsafe.Policy[any] = (*Policy[any])(nil)

// New returns a circuit-breaker Policy. failureThreshold and
// successThreshold must be at least 1; delay must be greater than zero.
func New[F any](failureThreshold int, delay time.Duration, successThreshold int) *Policy[F] {
	return newPolicy[F](failureThreshold, delay, successThreshold, failsafe.RealClock{}, nil)
}

// NewWithHooks is like New but also reports state transitions via hooks.
func NewWithHooks[F any](failureThreshold int, delay time.Duration, successThreshold int, hooks *failsafe.Hooks) *Policy[F] {
	return newPolicy[F](failureThreshold, delay, successThreshold, failsafe.RealClock{}, hooks)
}

// newWithClock exists so tests can substitute a fake Clock instead of
// sleeping for real while waiting out the cool-down.
func newWithClock[F any](failureThreshold int, delay time.Duration, successThreshold int, clock failsafe.Clock) *Policy[F] {
	return newPolicy[F](failureThreshold, delay, successThreshold, clock, nil)
}

func newPolicy[F any](failureThreshold int, delay time.Duration, successThreshold int, clock failsafe.Clock, hooks *failsafe.Hooks) *Policy[F] {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if successThreshold < 1 {
		successThreshold = 1
	}
	p := &Policy[F]{
		BasePolicy:       failsafe.NewBasePolicy[F]("CircuitBreakerPolicy"),
		failureThreshold: failureThreshold,
		delay:            delay,
		successThreshold: successThreshold,
		clock:            clock,
		hooks:            hooks,
		outcomes:         bitset.New(uint(failureThreshold)),
	}
	p.SetSelf(p)
	return p
}

// State returns the breaker's current admission state.
func (p *Policy[F]) State() State { return p.state }

// RecentOutcomes is a strictly read-only diagnostic: the last up-to-
// failureThreshold pass/fail bits observed (1 = success, 0 = failure),
// exposed for metrics consumers. It never feeds back into the open/close
// decision, which is driven only by failureCount/successCount below.
func (p *Policy[F]) RecentOutcomes() *bitset.BitSet { return p.outcomes.Clone() }

// RunGuarded implements admission: in Open, a call within Delay of the last
// attempt is rejected without invoking the operation; a call after Delay
// probes by transitioning to HalfOpen and proceeding. Closed and HalfOpen
// both invoke the operation and record last_attempt beforehand.
func (p *Policy[F]) RunGuarded(op failsafe.Operation[F]) error {
	if p.state == Open {
		if p.clock.Now().Sub(p.lastAttempt) <= p.delay {
			p.rejected = true
			p.lastErr = failsafe.ErrBreakerOpen()
			return p.lastErr
		}
		p.state = HalfOpen
		p.hooks.EmitCircuitHalfOpen()
	}

	p.rejected = false
	p.lastAttempt = p.clock.Now()

	err := op.Execute()
	p.recordOutcome(err == nil)
	if err != nil {
		p.lastErr = failsafe.WrapRunnableError(err)
		return p.lastErr
	}
	p.lastErr = nil
	if p.state == HalfOpen {
		p.successCount++
	}
	return nil
}

func (p *Policy[F]) recordOutcome(success bool) {
	size := uint(p.failureThreshold)
	p.outcomes.SetTo(p.outcomeIdx, success)
	p.outcomeIdx = (p.outcomeIdx + 1) % size
	if p.outcomeCount < size {
		p.outcomeCount++
	}
}

// PolicyAction handles the failure side of the state machine. A rejected
// admission propagates CircuitBreakerOpen unchanged. An actual operation
// failure in HalfOpen reopens the breaker immediately regardless of count;
// in Closed it increments failureCount and opens once the threshold is
// reached. Either way the original RunGuarded error (RunnableError or
// CircuitBreakerOpen) is what propagates — PolicyAction only updates state,
// it never translates a RunnableError into CircuitBreakerOpen.
func (p *Policy[F]) PolicyAction(_ failsafe.Operation[F]) (failsafe.ActionState, error) {
	if p.rejected {
		return failsafe.ActionRetry, p.lastErr
	}

	if p.state == HalfOpen {
		p.open()
	} else {
		p.failureCount++
		if p.failureCount >= p.failureThreshold {
			p.open()
		}
	}
	return failsafe.ActionRetry, p.lastErr
}

func (p *Policy[F]) open() {
	p.state = Open
	p.successCount = 0
	p.hooks.EmitCircuitOpen()
}

// Reset is called by the driver after every guarded invocation that
// succeeds, and again by each enclosing policy's Reset. In Closed, it simply
// zeroes the failure count (the breaker stays Closed). In HalfOpen, it only
// closes the breaker once RunGuarded has counted successThreshold
// consecutive successes; short of that, the breaker deliberately stays
// HalfOpen with its partial count intact rather than being zeroed — a
// success is still reported to the caller (RunGuarded returned nil) without
// yet fully resetting the breaker's own state machine.
func (p *Policy[F]) Reset() {
	switch p.state {
	case HalfOpen:
		if p.successCount >= p.successThreshold {
			p.toClosed()
		}
	default:
		p.toClosed()
	}
	p.ResetInner()
}

func (p *Policy[F]) toClosed() {
	wasOpen := p.state != Closed
	p.state = Closed
	p.failureCount = 0
	p.successCount = 0
	p.lastAttempt = time.Time{}
	if wasOpen {
		p.hooks.EmitCircuitClose()
	}
}
