package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/richxcame/visit-pricing/pkg/logger"
	"go.uber.org/zap"
)

// RetryConfig describes an exponential backoff policy
type RetryConfig struct {
	// MaxAttempts includes the first call
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// EnableJitter draws each wait uniformly from [0, backoff)
	EnableJitter bool
	// RetryableChecker returns false for errors that will not go away on retry
	RetryableChecker func(error) bool
}

// DefaultRetryConfig is the policy for routing API calls when retries are enabled
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		EnableJitter:      true,
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, the
// attempts run out or ctx ends. Attempts are counted under name.
func Retry[T any](ctx context.Context, config RetryConfig, name string, op func(context.Context) (T, error)) (T, error) {
	attempts := max(config.MaxAttempts, 1)
	start := time.Now()
	finish := func(ok bool) { RecordRetryOperation(name, time.Since(start).Seconds(), ok) }

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			finish(false)
			return zero, err
		}

		result, err := op(ctx)
		RecordRetryAttempt(name, err == nil)
		if err == nil {
			if attempt > 1 {
				logger.InfoContext(ctx, "operation succeeded after retry",
					zap.String("operation", name),
					zap.Int("attempt", attempt),
				)
			}
			finish(true)
			return result, nil
		}

		lastErr = err
		if !retryable(err, config) || attempt == attempts {
			break
		}

		wait := backoff(attempt, config)
		logger.DebugContext(ctx, "retrying operation",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			finish(false)
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logger.WarnContext(ctx, "operation failed",
		zap.String("operation", name),
		zap.Error(lastErr),
	)
	finish(false)
	return zero, lastErr
}

// backoff is initial * multiplier^(attempt-1), capped at MaxBackoff
func backoff(attempt int, config RetryConfig) time.Duration {
	wait := float64(config.InitialBackoff) * math.Pow(config.BackoffMultiplier, float64(attempt-1))
	if config.MaxBackoff > 0 {
		wait = math.Min(wait, float64(config.MaxBackoff))
	}

	d := time.Duration(wait)
	if config.EnableJitter && d > 0 {
		d = time.Duration(rand.Int63n(int64(d)))
	}
	return d
}

func retryable(err error, config RetryConfig) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrCircuitOpen):
		return false
	case config.RetryableChecker != nil:
		return config.RetryableChecker(err)
	default:
		return true
	}
}

// IsRetryableHTTPStatus reports whether an upstream status is transient
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
