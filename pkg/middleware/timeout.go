package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/visit-pricing/pkg/common"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"go.uber.org/zap"
)

// RequestTimeout puts a deadline on the request context. Distance lookups
// observe it; a handler that runs past it without writing gets a 504.
// A non-positive timeout leaves the context untouched.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}

		logger.WithContext(ctx).Warn("Request deadline exceeded",
			zap.String("route", c.FullPath()),
			zap.Duration("timeout", timeout),
		)
		c.Header("X-Timeout", "true")
		common.AppErrorResponse(c, common.NewAppError(http.StatusGatewayTimeout,
			"The request took too long to process", ctx.Err()).WithErrorCode("REQUEST_TIMEOUT"))
		c.Abort()
	}
}
