package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/visit-pricing/pkg/common"
	"github.com/richxcame/visit-pricing/pkg/errors"
)

const sentryFlushTimeout = 2 * time.Second

// SentryMiddleware attaches a Sentry hub to every request
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: sentryFlushTimeout,
	})
}

// ErrorHandler reports handler errors and bare 5xx responses. Register it
// last so it sees the final status.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		errors.AddBreadcrumbForRequest(c.Request.Method, c.Request.URL.Path, status, elapsed)

		reported := false
		for _, ginErr := range c.Errors {
			if errors.ShouldReportError(ginErr.Err, status) {
				capture(c, status, elapsed, func(hub *sentry.Hub) { hub.CaptureException(ginErr.Err) })
				reported = true
			}
		}
		if !reported && len(c.Errors) == 0 && status >= http.StatusInternalServerError {
			capture(c, status, elapsed, func(hub *sentry.Hub) {
				hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s %s", status, c.Request.Method, c.FullPath()))
			})
		}
	}
}

// RecoveryWithSentry turns a panic into a reported event and a 500
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			hub := hubFor(c)
			hub.Scope().SetRequest(c.Request)
			hub.Scope().SetContext("panic", map[string]interface{}{
				"value":      fmt.Sprint(recovered),
				"stacktrace": string(debug.Stack()),
			})
			hub.RecoverWithContext(c.Request.Context(), recovered)
			hub.Flush(sentryFlushTimeout)

			common.AppErrorResponse(c, common.NewInternalError("An unexpected error occurred", nil).WithErrorCode("INTERNAL_ERROR"))
			c.Abort()
		}()

		c.Next()
	}
}

func hubFor(c *gin.Context) *sentry.Hub {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		return hub
	}
	return sentry.CurrentHub().Clone()
}

func capture(c *gin.Context, status int, elapsed time.Duration, send func(*sentry.Hub)) {
	hub := hubFor(c)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetLevel(sentryLevel(status))
		scope.SetTag("http.method", c.Request.Method)
		scope.SetTag("http.status_code", strconv.Itoa(status))
		scope.SetTag("endpoint", c.FullPath())
		if id := GetCorrelationID(c); id != "" {
			scope.SetTag("correlation_id", id)
		}
		scope.SetContext("http", map[string]interface{}{
			"url":         c.Request.URL.String(),
			"headers":     errors.SanitizeHeaders(c.Request.Header),
			"duration_ms": elapsed.Milliseconds(),
		})
		send(hub)
	})
}

func sentryLevel(status int) sentry.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return sentry.LevelError
	case status == http.StatusTooManyRequests:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
