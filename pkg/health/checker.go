package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/richxcame/visit-pricing/pkg/resilience"
)

// Checker is a health check function that returns an error if unhealthy
type Checker func() error

// Pinger is satisfied by the Redis client wrapper
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultTimeout bounds a single dependency check
const DefaultTimeout = 2 * time.Second

// RedisChecker pings the distance cache backend
func RedisChecker(client Pinger, timeout time.Duration) Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		return nil
	}
}

// BreakerChecker fails while the circuit breaker is open
func BreakerChecker(breaker *resilience.CircuitBreaker) Checker {
	return func() error {
		if !breaker.Allow() {
			return fmt.Errorf("circuit breaker %s is %s", breaker.Name(), breaker.State())
		}
		return nil
	}
}

// ConditionChecker fails with message when ok reports false
func ConditionChecker(ok func() bool, message string) Checker {
	return func() error {
		if !ok() {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

// CachedChecker caches the result of a health check for a given duration
type CachedChecker struct {
	mu         sync.Mutex
	checker    Checker
	cacheTTL   time.Duration
	lastCheck  time.Time
	lastResult error
}

// NewCachedChecker creates a new cached health checker
func NewCachedChecker(checker Checker, cacheTTL time.Duration) *CachedChecker {
	return &CachedChecker{
		checker:  checker,
		cacheTTL: cacheTTL,
	}
}

// Check runs the health check, using the cached result while it is still valid
func (c *CachedChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !c.lastCheck.IsZero() && now.Sub(c.lastCheck) < c.cacheTTL {
		return c.lastResult
	}

	c.lastResult = c.checker()
	c.lastCheck = now
	return c.lastResult
}
