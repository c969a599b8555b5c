package failsafe

// Operation is the caller-supplied fallible work an Engine protects. F is the
// shape of the value a FallbackPolicy can substitute into the operation.
//
// The engine borrows an Operation exclusively for the duration of one
// Engine.Run call. Operations need not be idempotent, but retry and
// circuit-breaker semantics are only meaningful for operations that are at
// least safely re-invokable.
type Operation[F any] interface {
	// Execute performs one attempt. A non-nil error is treated as an opaque
	// failure payload and wrapped in a RunnableError if no policy handles it.
	Execute() error

	// Substitute re-initializes the operation's externally observable state
	// from a fallback value. Only ever called by a fallback.Policy.
	Substitute(fallback F)
}

// FallbackFactory produces a fallback value on demand. It is invoked at most
// once per fallback activation and may carry its own mutable state across
// activations (for example, a rotating list of names).
type FallbackFactory[F any] func() F
