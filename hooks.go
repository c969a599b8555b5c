package failsafe

import "time"

// Hooks holds optional, synchronous, zero-I/O callbacks for policy lifecycle
// events. All fields are nil by default; callers set only the ones they care
// about. A Hooks value should not be mutated once an Engine has been built —
// the driver reads the function fields without synchronization, which is
// safe as long as the struct is effectively read-only after Build.
//
// Hooks are the engine's substitute for logging: the core must never perform
// I/O itself (see the package doc comment), so wiring a real logger is the
// caller's job — do it from inside these callbacks.
type Hooks struct {
	// OnRetry fires immediately before a retry policy sleeps and re-attempts.
	OnRetry func(attempt int, err error)
	// OnRetriesExceeded fires when a retry policy's budget is exhausted.
	OnRetriesExceeded func(err error)
	// OnTimeout fires when a timeout policy observes a deadline violation.
	OnTimeout func(elapsed time.Duration)
	// OnCircuitOpen fires when a circuit breaker transitions to Open.
	OnCircuitOpen func()
	// OnCircuitHalfOpen fires when a circuit breaker transitions to HalfOpen.
	OnCircuitHalfOpen func()
	// OnCircuitClose fires when a circuit breaker transitions back to Closed.
	OnCircuitClose func()
	// OnFallbackUsed fires after a fallback policy substitutes a value.
	OnFallbackUsed func(cause error)
	// OnRateLimited fires when a rate limiter rejects or delays a call.
	OnRateLimited func(waited time.Duration)
}

func (h *Hooks) EmitRetry(attempt int, err error) {
	if h != nil && h.OnRetry != nil {
		h.OnRetry(attempt, err)
	}
}

func (h *Hooks) EmitRetriesExceeded(err error) {
	if h != nil && h.OnRetriesExceeded != nil {
		h.OnRetriesExceeded(err)
	}
}

func (h *Hooks) EmitTimeout(elapsed time.Duration) {
	if h != nil && h.OnTimeout != nil {
		h.OnTimeout(elapsed)
	}
}

func (h *Hooks) EmitCircuitOpen() {
	if h != nil && h.OnCircuitOpen != nil {
		h.OnCircuitOpen()
	}
}

func (h *Hooks) EmitCircuitHalfOpen() {
	if h != nil && h.OnCircuitHalfOpen != nil {
		h.OnCircuitHalfOpen()
	}
}

func (h *Hooks) EmitCircuitClose() {
	if h != nil && h.OnCircuitClose != nil {
		h.OnCircuitClose()
	}
}

func (h *Hooks) EmitFallbackUsed(cause error) {
	if h != nil && h.OnFallbackUsed != nil {
		h.OnFallbackUsed(cause)
	}
}

func (h *Hooks) EmitRateLimited(waited time.Duration) {
	if h != nil && h.OnRateLimited != nil {
		h.OnRateLimited(waited)
	}
}
