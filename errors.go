package failsafe

import "fmt"

// Kind is a closed set of failure kinds an Engine can surface from Run.
type Kind int

const (
	// KindRunnable indicates the operation failed and no policy caught it.
	KindRunnable Kind = iota
	// KindRetry indicates a retry policy's budget was exhausted.
	KindRetry
	// KindTimeout indicates an inner execution exceeded its deadline.
	KindTimeout
	// KindCircuitBreakerOpen indicates a circuit breaker rejected the call.
	KindCircuitBreakerOpen
	// KindUsedFallback indicates a fallback policy substituted a value. The
	// operation is left in a valid state, but the nominal attempt failed —
	// callers that want to treat this as success must do so at the call site.
	KindUsedFallback
	// KindRateLimitExceeded indicates a non-blocking rate limiter rejected
	// the call. Not part of the original closed set; see DESIGN.md.
	KindRateLimitExceeded
	// KindUnknown is reserved.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindRunnable:
		return "RunnableError"
	case KindRetry:
		return "RetryError"
	case KindTimeout:
		return "TimeoutError"
	case KindCircuitBreakerOpen:
		return "CircuitBreakerOpen"
	case KindUsedFallback:
		return "UsedFallback"
	case KindRateLimitExceeded:
		return "RateLimitExceeded"
	default:
		return "UnknownError"
	}
}

// Sentinel errors for use with errors.Is. Every non-KindRunnable Error
// unwraps to exactly one of these.
var (
	ErrRetriesExceeded    = &sentinel{"failsafe: retry budget exhausted"}
	ErrTimeout            = &sentinel{"failsafe: execution exceeded timeout"}
	ErrCircuitBreakerOpen = &sentinel{"failsafe: circuit breaker is open"}
	ErrUsedFallback       = &sentinel{"failsafe: fallback was used"}
	ErrRateLimitExceeded  = &sentinel{"failsafe: rate limit exceeded"}
	ErrUnknown            = &sentinel{"failsafe: unknown error"}
)

type sentinel struct{ msg string }

func (s *sentinel) Error() string { return s.msg }

// Error is the error type surfaced by Engine.Run. It carries a Kind and, for
// KindRunnable, the opaque operation error that caused it.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.Kind == KindRunnable {
		return fmt.Sprintf("failsafe: operation failed: %v", e.cause)
	}
	return e.cause.Error()
}

// Unwrap exposes the underlying cause: the wrapped operation error for
// KindRunnable, or the package-level sentinel for every other Kind, so
// callers can use errors.Is/errors.As idiomatically.
func (e *Error) Unwrap() error { return e.cause }

func newRunnableError(cause error) *Error {
	return &Error{Kind: KindRunnable, cause: cause}
}

func newKindError(kind Kind, sentinel error) *Error {
	return &Error{Kind: kind, cause: sentinel}
}

var (
	errRetriesExceededErr    = newKindError(KindRetry, ErrRetriesExceeded)
	errTimeoutErr            = newKindError(KindTimeout, ErrTimeout)
	errCircuitBreakerOpenErr = newKindError(KindCircuitBreakerOpen, ErrCircuitBreakerOpen)
	errUsedFallbackErr       = newKindError(KindUsedFallback, ErrUsedFallback)
	errRateLimitExceededErr  = newKindError(KindRateLimitExceeded, ErrRateLimitExceeded)
)

// ErrRetryExceeded returns the terminal error a retry policy returns once its
// budget is exhausted.
func ErrRetryExceeded() error { return errRetriesExceededErr }

// ErrTimeoutExceeded returns the terminal error a timeout policy returns once
// its deadline is exceeded.
func ErrTimeoutExceeded() error { return errTimeoutErr }

// ErrBreakerOpen returns the terminal error a circuit breaker returns when it
// rejects a call while open. A failing call that opens or re-opens the
// breaker reports its own RunnableError instead.
func ErrBreakerOpen() error { return errCircuitBreakerOpenErr }

// ErrFallbackUsed returns the terminal error a fallback policy returns after
// substituting a value.
func ErrFallbackUsed() error { return errUsedFallbackErr }

// ErrLimitExceeded returns the terminal error a non-blocking rate limiter
// returns when no permit is available.
func ErrLimitExceeded() error { return errRateLimitExceededErr }

// WrapRunnableError wraps an opaque operation error as surfaced by the
// default RunGuarded implementation.
func WrapRunnableError(cause error) error { return newRunnableError(cause) }
