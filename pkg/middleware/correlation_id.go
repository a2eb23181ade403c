package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/visit-pricing/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request ID in both directions
	CorrelationIDHeader = "X-Request-ID"
	// CorrelationIDKey is the gin context key for the request ID
	CorrelationIDKey = "correlation_id"
)

// Sheet triggers send IDs such as "edit-2024-03-04-row-12"; anything else is replaced.
var acceptedCorrelationID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

// CorrelationID reuses a well-formed inbound X-Request-ID or mints a UUID,
// then exposes it to handlers, the request context logger and the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if !acceptedCorrelationID.MatchString(id) {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), id))
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the request ID set by CorrelationID
func GetCorrelationID(c *gin.Context) string {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return id
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
