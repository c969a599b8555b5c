package fallback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventhq/failsafe-go"
	"github.com/inventhq/failsafe-go/internal/policytest"
)

func TestPolicy_SubstitutesOnFailure(t *testing.T) {
	p := New[string](func() string { return "default" })

	op := &policytest.FakeOperation{FailUntil: -1}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.Error(t, err)
	assert.True(t, errors.Is(err, failsafe.ErrUsedFallback))
	assert.Equal(t, "default", op.Value)
	assert.Equal(t, []string{"default"}, op.Substituted)
}

func TestPolicy_FactoryInvokedOncePerActivation(t *testing.T) {
	names := []string{"alice", "bob"}
	calls := 0
	p := New[string](func() string {
		v := names[calls%len(names)]
		calls++
		return v
	})

	op := &policytest.FakeOperation{FailUntil: -1}
	_ = p.Run(op, &failsafe.ErrorLog{})
	assert.Equal(t, 1, calls)
	assert.Equal(t, "alice", op.Value)
}

func TestPolicy_NoSubstitutionOnSuccess(t *testing.T) {
	p := New[string](func() string { return "default" })

	op := &policytest.FakeOperation{FailUntil: 0}
	err := p.Run(op, &failsafe.ErrorLog{})

	require.NoError(t, err)
	assert.Equal(t, "ok", op.Value)
	assert.Empty(t, op.Substituted)
}
