package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDistanceService struct {
	mock.Mock
}

func (m *mockDistanceService) Distance(ctx context.Context, origin, destination string) Distance {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(Distance)
}

func (m *mockDistanceService) Configured() bool {
	return m.Called().Bool(0)
}

func setupRouter(svc DistanceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1/pricing"))
	return router
}

func TestGetDistance_Success(t *testing.T) {
	svc := new(mockDistanceService)
	svc.On("Configured").Return(true)
	svc.On("Distance", mock.Anything, "Toronto", "Hamilton").Return(Meters(68500))

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/distance?origin=Toronto&destination=Hamilton", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool           `json:"success"`
		Data    DistanceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Available)
	require.NotNil(t, resp.Data.DistanceMeters)
	assert.Equal(t, int64(68500), *resp.Data.DistanceMeters)
}

func TestGetDistance_Unavailable(t *testing.T) {
	svc := new(mockDistanceService)
	svc.On("Configured").Return(true)
	svc.On("Distance", mock.Anything, "Toronto", "Atlantis").Return(Unavailable)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/distance?origin=Toronto&destination=Atlantis", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available":false`)
	assert.NotContains(t, w.Body.String(), "distance_meters")
}

func TestGetDistance_MissingParams(t *testing.T) {
	svc := new(mockDistanceService)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/distance?origin=Toronto", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Distance", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetDistance_NotConfigured(t *testing.T) {
	svc := new(mockDistanceService)
	svc.On("Configured").Return(false)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/distance?origin=Toronto&destination=Hamilton", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "API_KEY_NOT_CONFIGURED")
}
