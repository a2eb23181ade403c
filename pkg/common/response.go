package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey mirrors the gin key set by the correlation ID middleware
const requestIDKey = "correlation_id"

// Response is the JSON envelope every endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request. RequestID lets a sheet user quote
// the failing call back to support.
type ErrorInfo struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Meta carries list sizes for batch style responses
type Meta struct {
	Total int `json:"total,omitempty"`
}

// SuccessResponse writes a 200 envelope around data
func SuccessResponse(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessResponseWithMeta writes a 200 envelope with counters
func SuccessResponseWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// ErrorResponse writes a failure envelope without a machine readable code
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, statusCode, "", message)
}

// AppErrorResponse writes err using its own status and error code
func AppErrorResponse(c *gin.Context, err *AppError) {
	writeError(c, err.Code, err.ErrorCode, err.Message)
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      status,
			ErrorCode: code,
			Message:   message,
			RequestID: c.GetString(requestIDKey),
		},
	})
}
