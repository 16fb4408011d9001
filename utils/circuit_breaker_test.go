package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_PassesThroughWhileClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")

	err := cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_SurfacesCallError(t *testing.T) {
	cb := NewCircuitBreaker("test")
	callErr := errors.New("backend down")

	err := cb.Execute(func() error { return callErr })
	assert.ErrorIs(t, err, callErr)
}

func TestCircuitBreaker_TripsAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("test")
	callErr := errors.New("backend down")

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return callErr })
	}

	assert.Equal(t, BreakerOpen, cb.State())

	calls := 0
	err := cb.Execute(func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 0, calls, "open breaker must not invoke the call")
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.cooldown = 10 * time.Millisecond
	callErr := errors.New("backend down")

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return callErr })
	}
	require.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.cooldown = 10 * time.Millisecond
	callErr := errors.New("backend down")

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return callErr })
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, BreakerHalfOpen, cb.State())

	_ = cb.Execute(func() error { return callErr })
	assert.Equal(t, BreakerOpen, cb.State())
}
