package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the breaker rejects calls
var ErrCircuitOpen = errors.New("circuit breaker open")

const defaultFailureThreshold = 5

// Operation is a call guarded by a CircuitBreaker
type Operation func(ctx context.Context) (interface{}, error)

// FallbackFunc answers a call the breaker rejected
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// Settings configures a CircuitBreaker
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
	// Harmless reports errors that are answers from a healthy dependency,
	// such as "no route between these places". They never trip the breaker.
	Harmless func(error) bool
}

// BuildSettings converts second based config values into Settings
func BuildSettings(name string, intervalSec, timeoutSec, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         time.Duration(intervalSec) * time.Second,
		Timeout:          time.Duration(timeoutSec) * time.Second,
		FailureThreshold: uint32(max(failureThreshold, 0)),
		SuccessThreshold: uint32(max(successThreshold, 0)),
	}
}

// CircuitBreaker adds logging, metrics and a fallback to gobreaker
type CircuitBreaker struct {
	name     string
	breaker  *gobreaker.CircuitBreaker
	fallback FallbackFunc
}

// NewCircuitBreaker builds a breaker that opens after FailureThreshold
// consecutive failures. A nil fallback makes rejected calls return ErrCircuitOpen.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := nextBreakerName(settings.Name)
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}

	gs := gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			recordBreakerStateChange(name, from, to)
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	if settings.Harmless != nil {
		harmless := settings.Harmless
		gs.IsSuccessful = func(err error) bool { return err == nil || harmless(err) }
	}

	recordBreakerState(name, gobreaker.StateClosed)
	return &CircuitBreaker{
		name:     name,
		breaker:  gobreaker.NewCircuitBreaker(gs),
		fallback: fallback,
	}
}

// Name is the label used in logs and metrics
func (c *CircuitBreaker) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// State is "closed", "half-open" or "open". A nil breaker is always closed.
func (c *CircuitBreaker) State() string {
	if c == nil || c.breaker == nil {
		return gobreaker.StateClosed.String()
	}
	return c.breaker.State().String()
}

// Allow reports whether a call would currently be attempted
func (c *CircuitBreaker) Allow() bool {
	if c == nil || c.breaker == nil {
		return true
	}
	return c.breaker.State() != gobreaker.StateOpen
}

// Execute runs operation through the breaker. A nil breaker calls it directly.
func (c *CircuitBreaker) Execute(ctx context.Context, operation Operation) (interface{}, error) {
	if operation == nil {
		return nil, errors.New("operation cannot be nil")
	}
	if c == nil || c.breaker == nil {
		return operation(ctx)
	}

	recordBreakerRequest(c.name)
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return operation(ctx)
	})
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		recordBreakerFallback(c.name)
		if c.fallback != nil {
			return c.fallback(ctx, err)
		}
		return nil, ErrCircuitOpen
	default:
		recordBreakerFailure(c.name)
		return nil, err
	}
}

// Call is Execute with a typed result
func Call[T any](ctx context.Context, c *CircuitBreaker, op func(context.Context) (T, error)) (T, error) {
	var zero T
	result, err := c.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return op(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("breaker %s: unexpected result %T", c.Name(), result)
	}
	return typed, nil
}

// GracefulDegradation logs the rejected call and reports dependency as unavailable
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WarnContext(ctx, "dependency unavailable, degrading",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", dependency, ErrCircuitOpen)
	}
}
