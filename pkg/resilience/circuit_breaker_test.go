package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSettings(t *testing.T) {
	settings := BuildSettings("google-routes", 60, 30, 5, 2)

	assert.Equal(t, "google-routes", settings.Name)
	assert.Equal(t, 60*time.Second, settings.Interval)
	assert.Equal(t, 30*time.Second, settings.Timeout)
	assert.Equal(t, uint32(5), settings.FailureThreshold)
	assert.Equal(t, uint32(2), settings.SuccessThreshold)

	zero := BuildSettings("x", 0, 0, -1, 0)
	assert.Zero(t, zero.FailureThreshold)
	assert.Zero(t, zero.SuccessThreshold)
}

func TestCircuitBreakerTripsAndReturnsOpenError(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "test-breaker",
		Timeout:          50 * time.Millisecond,
		Interval:         50 * time.Millisecond,
		FailureThreshold: 2,
		SuccessThreshold: 1,
	}, nil)

	ctx := context.Background()
	failingOp := func(context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	}

	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(ctx, failingOp)
		require.Error(t, err, "iteration %d", i)
	}

	assert.False(t, breaker.Allow(), "breaker should be open after consecutive failures")

	_, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerUsesFallbackWhenOpen(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "fallback-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, GracefulDegradation("google-routes"))

	ctx := context.Background()
	_, err := breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	_, err = breaker.Execute(ctx, func(context.Context) (interface{}, error) {
		t.Fatal("operation must not run while open")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "google-routes")
}

func TestCircuitBreakerPassesThroughOnSuccess(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{
		Name:             "success-breaker",
		Timeout:          time.Second,
		Interval:         time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 1,
	}, nil)

	result, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return "response", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "response", result)
	assert.Equal(t, "success-breaker", breaker.Name())
}

func TestNilCircuitBreakerExecutesDirectly(t *testing.T) {
	var breaker *CircuitBreaker

	result, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, breaker.Allow())
}

func TestHarmlessErrorsDoNotTrip(t *testing.T) {
	noRoute := errors.New("no route")
	breaker := NewCircuitBreaker(Settings{
		Name:             "harmless-breaker",
		Timeout:          time.Minute,
		FailureThreshold: 1,
		Harmless:         func(err error) bool { return errors.Is(err, noRoute) },
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
			return nil, noRoute
		})
		assert.ErrorIs(t, err, noRoute)
	}
	assert.True(t, breaker.Allow())
	assert.Equal(t, "closed", breaker.State())
}

func TestCallReturnsTypedResult(t *testing.T) {
	breaker := NewCircuitBreaker(Settings{Name: "typed-breaker", Timeout: time.Minute}, nil)

	meters, err := Call(context.Background(), breaker, func(context.Context) (int64, error) {
		return 68500, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(68500), meters)

	var nilBreaker *CircuitBreaker
	meters, err = Call(context.Background(), nilBreaker, func(context.Context) (int64, error) {
		return 1200, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), meters)
	assert.Equal(t, "closed", nilBreaker.State())
}
