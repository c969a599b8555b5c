package failsafe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventhq/failsafe-go"
	"github.com/inventhq/failsafe-go/fallback"
	"github.com/inventhq/failsafe-go/internal/policytest"
	"github.com/inventhq/failsafe-go/retrypolicy"
)

func TestBuilder_EmptyStackFails(t *testing.T) {
	_, err := failsafe.NewBuilder[string]().Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, failsafe.ErrEmptyPolicyStack))
}

func TestBuilder_ComposesPushOrderOutermostFirst(t *testing.T) {
	a := retrypolicy.New[string](1, 0)
	b := retrypolicy.New[string](1, 0)
	c := retrypolicy.New[string](1, 0)

	engine, err := failsafe.NewBuilder[string]().Push(a).Push(b).Push(c).Build()
	require.NoError(t, err)

	_ = engine
	assert.True(t, a.Inner() == failsafe.Policy[string](b))
	assert.True(t, b.Inner() == failsafe.Policy[string](c))
	assert.Nil(t, c.Inner())
}

func TestEngine_FallbackAfterRetryExhausts(t *testing.T) {
	// Stack: [Fallback(factory), Retry(3, 0)] — retry exhausts first, then
	// fallback engages once every retry attempt has failed.
	retry := retrypolicy.New[string](3, 0)
	fb := fallback.New[string](func() string { return "No Name" })

	engine, err := failsafe.NewBuilder[string]().Push(fb).Push(retry).Build()
	require.NoError(t, err)

	op := &policytest.FakeOperation{FailUntil: -1}
	err = engine.Run(op)

	require.Error(t, err)
	assert.True(t, errors.Is(err, failsafe.ErrUsedFallback))
	assert.Equal(t, 3, op.Attempts)
	assert.Equal(t, []string{"No Name"}, op.Substituted)
}

func TestEngine_RunWithDiagnosticsRecordsEveryInnerError(t *testing.T) {
	retry := retrypolicy.New[string](3, time.Millisecond)
	engine, err := failsafe.NewBuilder[string]().Push(retry).Build()
	require.NoError(t, err)

	op := &policytest.FakeOperation{FailUntil: -1}
	runErr, log := engine.RunWithDiagnostics(op)

	require.Error(t, runErr)
	assert.Len(t, log.Errors(), 3)
}

func TestEngine_ResetCompletenessAfterEventualSuccess(t *testing.T) {
	retry := retrypolicy.New[string](5, 0)
	engine, err := failsafe.NewBuilder[string]().Push(retry).Build()
	require.NoError(t, err)

	op := &policytest.FakeOperation{FailUntil: 2}
	runErr := engine.Run(op)
	require.NoError(t, runErr)

	// A second, fresh operation against the same engine must get a full
	// retry budget again — nothing should have leaked from the first call.
	op2 := &policytest.FakeOperation{FailUntil: 4}
	runErr = engine.Run(op2)
	require.NoError(t, runErr)
	assert.Equal(t, 5, op2.Attempts)
}
