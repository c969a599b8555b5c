// Package fallback provides a Policy that substitutes a caller-supplied
// value into the Operation once every inner attempt has failed.
package fallback

import "github.com/inventhq/failsafe-go"

// Policy invokes Factory to produce a fallback value and calls
// Operation.Substitute with it once its inner chain (or the Operation
// itself, if Policy is innermost) has exhausted every attempt. It uses the
// default RunGuarded — a fallback policy does not guard anything itself,
// it only reacts to an inner failure.
type Policy[F any] struct {
	*failsafe.BasePolicy[F]

	factory failsafe.FallbackFactory[F]
	hooks   *failsafe.Hooks
}

var _ failsafe.Policy[any] = (*Policy[any])(nil)

// New returns a fallback Policy that substitutes the value produced by
// factory, invoked at most once per fallback activation.
func New[F any](factory failsafe.FallbackFactory[F]) *Policy[F] {
	return newPolicy[F](factory, nil)
}

// NewWithHooks is like New but also reports fallback activation via hooks.
func NewWithHooks[F any](factory failsafe.FallbackFactory[F], hooks *failsafe.Hooks) *Policy[F] {
	return newPolicy[F](factory, hooks)
}

func newPolicy[F any](factory failsafe.FallbackFactory[F], hooks *failsafe.Hooks) *Policy[F] {
	p := &Policy[F]{
		BasePolicy: failsafe.NewBasePolicy[F]("FallbackPolicy"),
		factory:    factory,
		hooks:      hooks,
	}
	p.SetSelf(p)
	return p
}

// PolicyAction invokes the factory and substitutes the resulting value into
// op, leaving the operation's observable state valid even though the
// nominal attempt failed.
func (p *Policy[F]) PolicyAction(op failsafe.Operation[F]) (failsafe.ActionState, error) {
	value := p.factory()
	op.Substitute(value)
	p.hooks.EmitFallbackUsed(nil)
	return failsafe.ActionUsingFallback, nil
}

// Reset recursively resets the inner policy. Fallback holds no transient
// state of its own.
func (p *Policy[F]) Reset() {
	p.ResetInner()
}
