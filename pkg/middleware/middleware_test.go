package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCorrelationIDGeneratesAndPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CorrelationID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = logger.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get(CorrelationIDHeader)
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, seen)
}

func TestCorrelationIDKeepsValidIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	incoming := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, incoming)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDAcceptsSheetTriggerIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	tests := []struct {
		incoming string
		kept     bool
	}{
		{"edit-2024-03-04-row-12", true},
		{"batch:week10", true},
		{"has spaces", false},
		{"-leading-dash", false},
		{"<script>", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationIDHeader, tt.incoming)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		got := w.Header().Get(CorrelationIDHeader)
		assert.Equal(t, got, w.Body.String())
		if tt.kept {
			assert.Equal(t, tt.incoming, got)
		} else {
			_, err := uuid.Parse(got)
			assert.NoError(t, err, tt.incoming)
		}
	}
}

func TestRequestLoggerWritesStructuredEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestLogger("visit-pricing"))
	router.GET("/api/v1/pricing/rates", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"price": 260})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rates?location=Hamilton", nil))

	entries := logs.FilterMessage("Request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "visit-pricing", fields["service"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "location=Hamilton", fields["query"])
}

func TestRequestLoggerRecordsBodyAndRejections(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(RequestLogger("visit-pricing"))
	router.POST("/api/v1/pricing/day-plans", func(c *gin.Context) {
		var payload map[string]any
		require.NoError(t, c.ShouldBindJSON(&payload))
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/day-plans",
		strings.NewReader("{\n  \"technician\": \"Alex\"\n}"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Request rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, `{ "technician": "Alex" }`, fields["request_body"])
	assert.Equal(t, "/api/v1/pricing/day-plans", fields["route"])
}

func TestCompactBodyTruncates(t *testing.T) {
	long := strings.Repeat("a", maxLoggedBody+10)
	got := compactBody([]byte(long))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.Len(t, got, maxLoggedBody+len("...(truncated)"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS("https://ops.example.com, https://sheets.example.com"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://sheets.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://sheets.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Metrics("visit-pricing"))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRecoveryWithSentryAnswers500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RecoveryWithSentry())
	router.GET("/boom", func(c *gin.Context) { panic("rate table corrupted") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"INTERNAL_ERROR"`)
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelError, sentryLevel(http.StatusBadGateway))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(http.StatusTooManyRequests))
	assert.Equal(t, sentry.LevelInfo, sentryLevel(http.StatusNotFound))
}
