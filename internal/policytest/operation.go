// Package policytest provides a small fake Operation shared by the policy
// packages' tests, modeled on the Person fixture used throughout the
// original reference implementation's own test suite.
package policytest

import "errors"

// ErrAttemptFailed is the error a FakeOperation returns for a failing
// attempt.
var ErrAttemptFailed = errors.New("policytest: attempt failed")

// FakeOperation is an Operation[string] whose Execute behavior is driven by
// a caller-supplied fail pattern: FailUntil attempts fail, then every
// subsequent attempt succeeds. A FailUntil of -1 means "always fail".
type FakeOperation struct {
	FailUntil int
	Value     string

	Attempts    int
	Substituted []string
}

// Execute records the attempt and fails while Attempts <= FailUntil.
func (o *FakeOperation) Execute() error {
	o.Attempts++
	if o.FailUntil < 0 || o.Attempts <= o.FailUntil {
		return ErrAttemptFailed
	}
	o.Value = "ok"
	return nil
}

// Substitute records the fallback value and adopts it as the current value.
func (o *FakeOperation) Substitute(fallback string) {
	o.Substituted = append(o.Substituted, fallback)
	o.Value = fallback
}
