package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestBreaker() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker()
	assert.Equal(t, CBClosed, cb.State())

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errBoom)
	}
	assert.Equal(t, CBOpen, cb.State())

	// While open, calls fast-fail without invoking fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker()

	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(succeed))
	require.Error(t, cb.Execute(fail))
	require.Error(t, cb.Execute(fail))

	// Never hit three in a row.
	assert.Equal(t, CBClosed, cb.State())
}

func TestBreaker_HalfOpenProbeAfterTimeout(t *testing.T) {
	cb := newTestBreaker()
	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	cb := newTestBreaker()
	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	time.Sleep(60 * time.Millisecond)

	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, CBClosed, cb.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker()
	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(fail))
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
