package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func testBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", Config{
		MaxRequests:      2,
		Timeout:          timeout,
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Logger:           zap.NewNop(),
	})
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return errBoom })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return nil })
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 10; i++ {
		assert.NoError(t, succeed(cb))
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := testBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, fail(cb), errBoom)
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, fail(cb), ErrCircuitOpen)
}

func TestBreakerResetsFailureCountOnSuccess(t *testing.T) {
	cb := testBreaker(time.Minute)

	fail(cb)
	fail(cb)
	succeed(cb)
	fail(cb)
	fail(cb)

	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenToClosed(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		fail(cb)
	}
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, succeed(cb))
	assert.NoError(t, succeed(cb))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		fail(cb)
	}

	time.Sleep(20 * time.Millisecond)
	assert.ErrorIs(t, fail(cb), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
}
