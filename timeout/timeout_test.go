package timeout

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventhq/failsafe-go"
	"github.com/inventhq/failsafe-go/internal/policytest"
)

// slowOperation simulates an Operation whose Execute call takes a
// caller-controlled amount of wall-clock time, advancing a FakeClock so the
// timeout policy's post-hoc measurement sees it without a real sleep.
type slowOperation struct {
	clock *policytest.FakeClock
	taken time.Duration
	err   error
}

func (o *slowOperation) Execute() error {
	o.clock.Advance(o.taken)
	return o.err
}

func (o *slowOperation) Substitute(string) {}

func TestPolicy_WithinDeadline(t *testing.T) {
	clock := &policytest.FakeClock{}
	p := newWithClock[string](50*time.Millisecond, clock)

	op := &slowOperation{clock: clock, taken: 10 * time.Millisecond}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.NoError(t, err)
	assert.Empty(t, log.Errors())
}

func TestPolicy_ExceedsDeadline(t *testing.T) {
	clock := &policytest.FakeClock{}
	p := newWithClock[string](50*time.Millisecond, clock)

	op := &slowOperation{clock: clock, taken: 75 * time.Millisecond}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.Error(t, err)
	assert.True(t, errors.Is(err, failsafe.ErrTimeout))
	assert.Len(t, log.Errors(), 1)
}

func TestPolicy_OperationFailureWithinDeadlineIsPropagatedUnchanged(t *testing.T) {
	clock := &policytest.FakeClock{}
	p := newWithClock[string](50*time.Millisecond, clock)

	op := &slowOperation{clock: clock, taken: 5 * time.Millisecond, err: policytest.ErrAttemptFailed}
	log := &failsafe.ErrorLog{}

	err := p.Run(op, log)

	require.Error(t, err)
	assert.False(t, errors.Is(err, failsafe.ErrTimeout), "an ordinary operation failure must not be reported as a timeout")
}

func TestPolicy_Reset(t *testing.T) {
	clock := &policytest.FakeClock{}
	p := newWithClock[string](50*time.Millisecond, clock)
	p.timedOut = true
	p.lastErr = failsafe.ErrTimeoutExceeded()

	p.Reset()

	assert.False(t, p.timedOut)
	assert.NoError(t, p.lastErr)
}
