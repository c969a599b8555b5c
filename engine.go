package failsafe

import "errors"

// ErrEmptyPolicyStack is returned by Builder.Build when no policy was pushed.
var ErrEmptyPolicyStack = errors.New("failsafe: builder has no policies to build an engine from")

// Engine is the façade owning the head of a policy chain. Build one with
// NewBuilder.
type Engine[F any] struct {
	head  Policy[F]
	hooks *Hooks
}

// Run executes op through the engine's policy stack until a policy accepts
// the outcome as successful or a terminal failure propagates out of the
// outermost policy.
func (e *Engine[F]) Run(op Operation[F]) error {
	log := &ErrorLog{}
	return e.head.Run(op, log)
}

// RunWithDiagnostics behaves like Run but also returns the ErrorLog recording
// every inner error observed during this call, in the order recorded (see
// ErrorLog.Errors).
func (e *Engine[F]) RunWithDiagnostics(op Operation[F]) (error, *ErrorLog) {
	log := &ErrorLog{}
	err := e.head.Run(op, log)
	return err, log
}

// Hooks returns the Hooks configured on this engine's Builder, or nil.
func (e *Engine[F]) Hooks() *Hooks { return e.hooks }

// Builder accumulates policies in push order and links them, at Build time,
// so the first pushed policy is outermost and wraps every policy pushed
// after it.
type Builder[F any] struct {
	policies []Policy[F]
	hooks    *Hooks
}

// NewBuilder returns an empty Builder for fallback-value type F.
func NewBuilder[F any]() *Builder[F] {
	return &Builder[F]{}
}

// Push appends policy to the stack being built. The first Push call
// supplies the outermost policy; each subsequent Push supplies the next
// policy inward. Returns the Builder for chaining.
func (b *Builder[F]) Push(policy Policy[F]) *Builder[F] {
	b.policies = append(b.policies, policy)
	return b
}

// WithHooks attaches lifecycle Hooks to the Engine that Build produces.
// Individual policy constructors accept a *Hooks directly; this is a
// convenience for wiring the same Hooks value onto the Engine for
// introspection via Engine.Hooks.
func (b *Builder[F]) WithHooks(hooks *Hooks) *Builder[F] {
	b.hooks = hooks
	return b
}

// Build links the pushed policies into a chain — push order, outermost
// first — and returns the resulting Engine. Build fails if no policy was
// pushed.
func (b *Builder[F]) Build() (*Engine[F], error) {
	if len(b.policies) == 0 {
		return nil, ErrEmptyPolicyStack
	}
	for i := 0; i < len(b.policies)-1; i++ {
		b.policies[i].SetInner(b.policies[i+1])
	}
	return &Engine[F]{head: b.policies[0], hooks: b.hooks}, nil
}
