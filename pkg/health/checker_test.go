package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/visit-pricing/pkg/resilience"
	"github.com/stretchr/testify/assert"
)

type redisPinger struct {
	ping func(ctx context.Context) error
}

func (p redisPinger) Ping(ctx context.Context) error { return p.ping(ctx) }

func TestRedisChecker(t *testing.T) {
	client, mock := redismock.NewClientMock()
	pinger := redisPinger{ping: func(ctx context.Context) error { return client.Ping(ctx).Err() }}

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, RedisChecker(pinger, time.Second)())

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	err := RedisChecker(pinger, time.Second)()
	assert.ErrorContains(t, err, "redis ping failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreakerChecker(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "health-test",
		Timeout:          time.Minute,
		FailureThreshold: 1,
	}, nil)
	check := BreakerChecker(breaker)

	assert.NoError(t, check())

	_, _ = breaker.Execute(context.Background(), func(context.Context) (interface{}, error) {
		return nil, errors.New("upstream down")
	})
	assert.ErrorContains(t, check(), "health-test")
}

func TestConditionChecker(t *testing.T) {
	configured := false
	check := ConditionChecker(func() bool { return configured }, "routes api key not configured")

	assert.EqualError(t, check(), "routes api key not configured")
	configured = true
	assert.NoError(t, check())
}

func TestCachedChecker(t *testing.T) {
	calls := 0
	cached := NewCachedChecker(func() error {
		calls++
		return nil
	}, time.Hour)

	assert.NoError(t, cached.Check())
	assert.NoError(t, cached.Check())
	assert.Equal(t, 1, calls)
}
