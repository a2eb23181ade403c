package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"go.uber.org/zap"
)

const maxLoggedBody = 512

// quietPaths are probed constantly and only logged at debug level
var quietPaths = map[string]bool{
	"/healthz":      true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// RequestLogger writes one entry per request. Pricing calls log their JSON
// body so a disputed sheet value can be traced to the rows that produced it.
func RequestLogger(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		body := peekBody(c.Request)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("service", serviceName),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}
		if body != "" {
			fields = append(fields, zap.String("request_body", body))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			log.Error("Request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= http.StatusBadRequest:
			log.Warn("Request rejected", fields...)
		case quietPaths[c.Request.URL.Path]:
			log.Debug("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// peekBody reads a JSON request body and puts it back for the handler
func peekBody(r *http.Request) string {
	if r == nil || r.Body == nil || r.Method == http.MethodGet {
		return ""
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return compactBody(raw)
}

func compactBody(raw []byte) string {
	s := strings.Join(strings.Fields(string(raw)), " ")
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "...(truncated)"
	}
	return s
}
