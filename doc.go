/*
Package failsafe provides a resilience policy composition engine: it wraps a
caller-supplied fallible Operation in a configurable stack of failure-handling
Policies — retry, timeout, circuit breaker, fallback, and rate limiter — and
executes that Operation with coordinated recovery behavior across all layers.

# Composition

An Engine owns a chain of Policies, outermost first. Build one with a
Builder:

	engine, err := failsafe.NewBuilder[MyFallback]().
		Push(fallback.New[MyFallback](factory)).
		Push(retrypolicy.New[MyFallback](3, 50*time.Millisecond)).
		Build()

	err = engine.Run(myOperation)

Pushing A then B then C wraps them as A(B(C(operation))): A sees B's result,
B sees C's result, C directly guards the Operation. Each Policy customizes
the shared composition driver only through three methods — RunGuarded (what
counts as an attempt), PolicyAction (what to do after a failure) and Reset
(what to clear on success) — never the loop itself.

# Out of scope

failsafe never performs I/O. Concrete protected work, declarative
construction sugar, logging, and persistence are all external concerns; the
Operation interface and the optional Hooks are the seams for wiring them in.
*/
package failsafe
