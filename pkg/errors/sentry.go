package errors

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig configures the Sentry client
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
	ServerName       string
}

// DefaultSentryConfig reads SENTRY_* variables. ENVIRONMENT wins over
// SENTRY_ENVIRONMENT.
func DefaultSentryConfig(serviceName string) *SentryConfig {
	env := firstNonEmpty(os.Getenv("ENVIRONMENT"), os.Getenv("SENTRY_ENVIRONMENT"), "development")

	tracesFallback := 1.0
	if env == "production" {
		tracesFallback = 0.1
	}

	return &SentryConfig{
		DSN:              os.Getenv("SENTRY_DSN"),
		Environment:      env,
		Release:          os.Getenv("SENTRY_RELEASE"),
		SampleRate:       rateFromEnv("SENTRY_SAMPLE_RATE", 1.0),
		TracesSampleRate: rateFromEnv("SENTRY_TRACES_SAMPLE_RATE", tracesFallback),
		Debug:            os.Getenv("SENTRY_DEBUG") == "true",
		ServerName:       serviceName,
	}
}

// Enabled reports whether a DSN is configured
func (c *SentryConfig) Enabled() bool {
	return c != nil && c.DSN != ""
}

// InitSentry starts the Sentry client. Info and debug events are dropped and
// routing credentials are stripped from breadcrumbs.
func InitSentry(config *SentryConfig) error {
	if !config.Enabled() {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
		EnableTracing:    config.TracesSampleRate > 0,
		Debug:            config.Debug,
		ServerName:       config.ServerName,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			return event
		},
		BeforeBreadcrumb: func(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			for key := range b.Data {
				if sensitiveHeaders[http.CanonicalHeaderKey(key)] {
					b.Data[key] = redacted
				}
			}
			return b
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return nil
}

// Flush waits up to timeout for queued events to be sent
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// AddBreadcrumbForRequest records a finished HTTP request on the current hub
func AddBreadcrumbForRequest(method, url string, statusCode int, duration time.Duration) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   method + " " + url,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

var (
	expectedMu sync.RWMutex
	expected   []error
)

// RegisterExpected marks sentinel errors that describe a normal pricing
// outcome, such as a city missing from the rate table. Errors wrapping one
// of them are never reported.
func RegisterExpected(errs ...error) {
	expectedMu.Lock()
	defer expectedMu.Unlock()
	expected = append(expected, errs...)
}

// IsExpected reports whether err wraps a registered sentinel
func IsExpected(err error) bool {
	expectedMu.RLock()
	defer expectedMu.RUnlock()
	for _, target := range expected {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ShouldReportError decides whether a handler error is worth an event.
// Client errors other than 429 and expected outcomes are skipped.
func ShouldReportError(err error, statusCode int) bool {
	switch {
	case err == nil, IsExpected(err):
		return false
	case statusCode >= 400 && statusCode < 500:
		return statusCode == http.StatusTooManyRequests
	default:
		return true
	}
}

const redacted = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"Authorization":  true,
	"Cookie":         true,
	"X-Api-Key":      true,
	"X-Goog-Api-Key": true,
}

// SanitizeHeaders flattens headers for an event, redacting credentials
func SanitizeHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		switch {
		case sensitiveHeaders[http.CanonicalHeaderKey(key)]:
			out[key] = redacted
		case len(values) > 0:
			out[key] = values[0]
		}
	}
	return out
}

func rateFromEnv(key string, fallback float64) float64 {
	rate, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return rate
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
