package maps

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/visit-pricing/pkg/common"
)

// DistanceService is the subset of Service used by the HTTP layer
type DistanceService interface {
	Distance(ctx context.Context, origin, destination string) Distance
	Configured() bool
}

// Handler handles HTTP requests for distance lookups
type Handler struct {
	service DistanceService
}

// NewHandler creates a new maps handler
func NewHandler(service DistanceService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the distance routes on the given group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/distance", h.GetDistance)
}

type distanceQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
}

// GetDistance handles single distance lookups
// @Summary Driving distance between two locations
// @Tags Pricing
// @Produce json
// @Param origin query string true "Origin address"
// @Param destination query string true "Destination address"
// @Success 200 {object} DistanceResult
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/pricing/distance [get]
func (h *Handler) GetDistance(c *gin.Context) {
	var q distanceQuery
	if !common.BindQuery(c, &q) {
		return
	}

	if !h.service.Configured() {
		common.AppErrorResponse(c, common.NewServiceUnavailableError("routing api key not configured").WithErrorCode("API_KEY_NOT_CONFIGURED"))
		return
	}

	d := h.service.Distance(c.Request.Context(), q.Origin, q.Destination)
	result := DistanceResult{
		Origin:      q.Origin,
		Destination: q.Destination,
		Available:   d.Available,
	}
	if d.Available {
		meters := d.Meters
		result.DistanceMeters = &meters
	}

	c.JSON(http.StatusOK, common.Response{Success: true, Data: result})
}
