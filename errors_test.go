package failsafe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		KindRunnable:           "RunnableError",
		KindRetry:              "RetryError",
		KindTimeout:            "TimeoutError",
		KindCircuitBreakerOpen: "CircuitBreakerOpen",
		KindUsedFallback:       "UsedFallback",
		KindRateLimitExceeded:  "RateLimitExceeded",
		Kind(99):               "UnknownError",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	err := ErrRetryExceeded()
	assert.True(t, errors.Is(err, ErrRetriesExceeded))
	assert.False(t, errors.Is(err, ErrTimeout))

	var fsErr *Error
	ok := errors.As(err, &fsErr)
	assert.True(t, ok)
	assert.Equal(t, KindRetry, fsErr.Kind)
}

func TestWrapRunnableError(t *testing.T) {
	cause := errors.New("boom")
	wrapped := WrapRunnableError(cause)

	var fsErr *Error
	assert.True(t, errors.As(wrapped, &fsErr))
	assert.Equal(t, KindRunnable, fsErr.Kind)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "boom")
}
