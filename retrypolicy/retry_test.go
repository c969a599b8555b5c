package retrypolicy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventhq/failsafe-go"
	"github.com/inventhq/failsafe-go/internal/policytest"
)

func TestPolicy_RecoversWithinBudget(t *testing.T) {
	sleeper := &policytest.FakeSleeper{}
	p := newWithSleeper[string](3, 10*time.Millisecond, sleeper)

	op := &policytest.FakeOperation{FailUntil: 2}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.NoError(t, err)
	assert.Equal(t, 3, op.Attempts)
	assert.Equal(t, "ok", op.Value)
	assert.Equal(t, 0, p.tries, "try counter must reset after an eventual success")
	assert.Len(t, sleeper.Sleeps, 2, "should sleep once between each of the two failed attempts")
	assert.Len(t, log.Errors(), 2, "the two failed attempts should be recorded in the error log")
}

func TestPolicy_ExhaustsRetries(t *testing.T) {
	sleeper := &policytest.FakeSleeper{}
	p := newWithSleeper[string](3, 10*time.Millisecond, sleeper)

	op := &policytest.FakeOperation{FailUntil: -1}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.Error(t, err)
	assert.True(t, errors.Is(err, failsafe.ErrRetriesExceeded))
	assert.Equal(t, 3, op.Attempts, "exactly retries attempts should be made")
	assert.Equal(t, 0, p.tries, "try counter must reset even on exhaustion")
	assert.Len(t, log.Errors(), 3)
}

func TestPolicy_ClampsRetriesToAtLeastOne(t *testing.T) {
	p := New[string](0, 0)
	assert.Equal(t, 1, p.retries)
}

func TestPolicy_Reset(t *testing.T) {
	p := newWithSleeper[string](5, 0, &policytest.FakeSleeper{})
	p.tries = 3
	p.Reset()
	assert.Equal(t, 0, p.tries)
}
