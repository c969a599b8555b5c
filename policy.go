package failsafe

import "sync"

// ActionState is the internal signal a Policy's PolicyAction returns to
// direct its own driver loop. It is exported only so that Policy
// implementations outside this package can construct it; Engine.Run never
// surfaces an ActionState to its caller — see Error/Kind for what is
// actually returned.
type ActionState int

const (
	ActionSuccess ActionState = iota
	ActionRetry
	ActionUsingFallback
)

// ErrorLog accumulates every inner error seen during one top-level
// Engine.Run call, for diagnostics. The value returned by Run carries only
// the terminal error; ErrorLog gives access to everything that led up to it.
//
// An ErrorLog is created fresh for each Run call and is only ever touched by
// the single goroutine driving that call, so it needs no locking.
type ErrorLog struct {
	entries []error
}

func (l *ErrorLog) record(err error) {
	if l == nil || err == nil {
		return
	}
	l.entries = append(l.entries, err)
}

// Errors returns every error recorded so far, in the order recorded: an
// inner policy's errors come before the error its enclosing policy observes.
func (l *ErrorLog) Errors() []error {
	if l == nil {
		return nil
	}
	out := make([]error, len(l.entries))
	copy(out, l.entries)
	return out
}

// Policy handles execution failures. Implementations customize behavior
// only through RunGuarded (what counts as an attempt), PolicyAction (what to
// do after a failure) and Reset (what to clear on success); Run itself is
// the shared composition driver and should not be reimplemented.
type Policy[F any] interface {
	// Name identifies the policy for diagnostics.
	Name() string

	// Inner returns the immediately nested policy, or nil if this policy
	// directly guards the Operation.
	Inner() Policy[F]

	// SetInner wires the immediately nested policy. Called once by a
	// Builder at Build time.
	SetInner(p Policy[F])

	// RunGuarded performs one guarded invocation. The default implementation
	// calls Operation.Execute exactly once; policies with intrinsic guarding
	// semantics (timeout, circuit breaker) override it.
	RunGuarded(op Operation[F]) error

	// PolicyAction is called after an inner failure (whether from Inner.Run
	// or from RunGuarded) and decides whether to retry, substitute a
	// fallback, accept the failure as an eventual success, or surface a
	// terminal error.
	PolicyAction(op Operation[F]) (ActionState, error)

	// Reset zeroes this policy's transient counters and recursively resets
	// Inner. Called by the driver whenever an eventual success is observed
	// at or above this level.
	Reset()

	// Run is the composition driver: it delegates to Inner.Run, or to
	// RunGuarded if there is no inner policy, observes the outcome, and
	// loops, substitutes, or returns according to PolicyAction.
	Run(op Operation[F], log *ErrorLog) error
}

// BasePolicy implements the shared composition driver (Run) and sensible
// defaults (RunGuarded, Inner/SetInner) for embedding into a concrete
// Policy. Because Go has no virtual dispatch through embedding, a concrete
// policy must call SetSelf with its own outer value immediately after
// construction so that Run can invoke the concrete type's overridden
// RunGuarded/PolicyAction/Reset.
type BasePolicy[F any] struct {
	name  string
	inner Policy[F]
	self  Policy[F]
	mu    sync.Mutex
}

// NewBasePolicy returns a BasePolicy with the given diagnostic name. Callers
// must follow up with SetSelf before the policy is used.
func NewBasePolicy[F any](name string) *BasePolicy[F] {
	return &BasePolicy[F]{name: name}
}

// SetSelf records the concrete policy embedding this BasePolicy, so Run can
// dispatch RunGuarded/PolicyAction/Reset polymorphically.
func (b *BasePolicy[F]) SetSelf(self Policy[F]) { b.self = self }

// Name returns the diagnostic name supplied to NewBasePolicy.
func (b *BasePolicy[F]) Name() string { return b.name }

// Inner returns the wired inner policy, or nil at the bottom of the chain.
func (b *BasePolicy[F]) Inner() Policy[F] { return b.inner }

// SetInner wires the immediately nested policy.
func (b *BasePolicy[F]) SetInner(p Policy[F]) { b.inner = p }

// ResetInner recursively resets the inner policy, if any. Concrete Reset
// implementations should call this after clearing their own state.
func (b *BasePolicy[F]) ResetInner() {
	if b.inner != nil {
		b.inner.Reset()
	}
}

// RunGuarded invokes op.Execute exactly once, wrapping a non-nil error as a
// RunnableError. Policies with intrinsic guarding semantics override this.
func (b *BasePolicy[F]) RunGuarded(op Operation[F]) error {
	if err := op.Execute(); err != nil {
		return newRunnableError(err)
	}
	return nil
}

// Run is the shared composition driver described in the package doc
// comment. It must not be overridden.
func (b *BasePolicy[F]) Run(op Operation[F], log *ErrorLog) error {
	self := b.self
	for {
		var innerErr error
		if b.inner != nil {
			innerErr = b.inner.Run(op, log)
		} else {
			innerErr = self.RunGuarded(op)
		}

		if innerErr == nil {
			self.Reset()
			return nil
		}

		log.record(innerErr)

		action, err := self.PolicyAction(op)
		if err != nil {
			return err
		}
		switch action {
		case ActionSuccess:
			self.Reset()
			return nil
		case ActionRetry:
			continue
		case ActionUsingFallback:
			return errUsedFallbackErr
		default:
			return newKindError(KindUnknown, ErrUnknown)
		}
	}
}

// Lock and Unlock give concrete policies a ready-made mutex for guarding
// counters that RunGuarded/PolicyAction mutate, without every policy package
// needing its own sync import purely for this.
func (b *BasePolicy[F]) Lock()   { b.mu.Lock() }
func (b *BasePolicy[F]) Unlock() { b.mu.Unlock() }
