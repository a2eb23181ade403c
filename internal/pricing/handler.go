package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/visit-pricing/internal/ratetable"
	"github.com/richxcame/visit-pricing/pkg/common"
	"github.com/richxcame/visit-pricing/pkg/models"
	"github.com/richxcame/visit-pricing/pkg/validation"
)

// PricingService is the subset of Service used by the HTTP layer
type PricingService interface {
	PriceDay(ctx context.Context, jobs []models.Job, technician string, date time.Time) (*DayQuote, error)
	PriceEdit(ctx context.Context, jobs []models.Job, editedJobID string) (*EditResult, error)
	PriceAll(ctx context.Context, jobs []models.Job) ([]*DayQuote, error)
	QuoteLocation(location string, tier models.Tier) (*RateQuote, error)
	Locations() []string
	PremiumKeyword() string
}

// Handler handles HTTP requests for pricing
type Handler struct {
	service PricingService
}

// NewHandler creates a new pricing handler
func NewHandler(service PricingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the pricing routes on the given group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/day-plans", h.PriceDay)
	rg.POST("/edits", h.PriceEdit)
	rg.POST("/batch", h.PriceAll)
	rg.GET("/rates", h.GetRate)
	rg.GET("/locations", h.GetLocations)
}

// PriceDay prices one technician's day
// @Summary Price a technician day
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body DayPlanRequest true "Day plan"
// @Success 200 {object} DayQuote
// @Failure 400 {object} common.Response
// @Failure 404 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/pricing/day-plans [post]
func (h *Handler) PriceDay(c *gin.Context) {
	var req DayPlanRequest
	if !bindAndValidate(c, &req) {
		return
	}

	jobs, ok := h.toJobs(c, req.Jobs)
	if !ok {
		return
	}
	date, _ := time.Parse(validation.DateLayout, req.Date)

	quote, err := h.service.PriceDay(c.Request.Context(), jobs, req.Technician, date)
	if handleError(c, err, "failed to price day") {
		return
	}

	common.SuccessResponse(c, quote)
}

// PriceEdit re-prices the day of an edited job
// @Summary Process an edit
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body EditRequest true "Edit"
// @Success 200 {object} EditResult
// @Failure 400 {object} common.Response
// @Failure 404 {object} common.Response
// @Router /api/v1/pricing/edits [post]
func (h *Handler) PriceEdit(c *gin.Context) {
	var req EditRequest
	if !bindAndValidate(c, &req) {
		return
	}

	jobs, ok := h.toJobs(c, req.Jobs)
	if !ok {
		return
	}

	result, err := h.service.PriceEdit(c.Request.Context(), jobs, req.EditedJobID)
	if handleError(c, err, "failed to process edit") {
		return
	}

	common.SuccessResponse(c, result)
}

// PriceAll prices every technician day in the feed
// @Summary Price a whole feed
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Jobs"
// @Success 200 {array} DayQuote
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/pricing/batch [post]
func (h *Handler) PriceAll(c *gin.Context) {
	var req BatchRequest
	if !bindAndValidate(c, &req) {
		return
	}

	jobs, ok := h.toJobs(c, req.Jobs)
	if !ok {
		return
	}

	quotes, err := h.service.PriceAll(c.Request.Context(), jobs)
	if handleError(c, err, "failed to price feed") {
		return
	}

	common.SuccessResponseWithMeta(c, quotes, &common.Meta{Total: len(quotes)})
}

// GetRate returns the table prices of a location
// @Summary Rate table lookup
// @Tags Pricing
// @Produce json
// @Param location query string true "Location"
// @Param tier query string false "standard or premium"
// @Success 200 {object} RateQuote
// @Failure 400 {object} common.Response
// @Failure 404 {object} common.Response
// @Failure 422 {object} common.Response
// @Router /api/v1/pricing/rates [get]
func (h *Handler) GetRate(c *gin.Context) {
	var q RateQuery
	if !common.BindQuery(c, &q) {
		return
	}

	quote, err := h.service.QuoteLocation(q.Location, models.Tier(strings.ToLower(strings.TrimSpace(q.Tier))))
	if handleError(c, err, "failed to look up rate") {
		return
	}

	common.SuccessResponse(c, quote)
}

// GetLocations lists the rate table locations
func (h *Handler) GetLocations(c *gin.Context) {
	locations := h.service.Locations()
	common.SuccessResponseWithMeta(c, locations, &common.Meta{Total: len(locations)})
}

func (h *Handler) toJobs(c *gin.Context, inputs []JobInput) ([]models.Job, bool) {
	jobs := make([]models.Job, 0, len(inputs))
	for _, in := range inputs {
		job, err := in.ToJob(h.service.PremiumKeyword())
		if err != nil {
			common.AppErrorResponse(c, common.NewValidationError(err.Error()))
			return nil, false
		}
		jobs = append(jobs, job)
	}
	return jobs, true
}

func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !common.BindJSON(c, req) {
		return false
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.AppErrorResponse(c, common.NewValidationError(err.Error()))
		return false
	}
	return true
}

func handleError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrAPIKeyNotConfigured):
		err = common.NewServiceUnavailableError(TagAPIKeyMissing).WithErrorCode("API_KEY_NOT_CONFIGURED")
	case errors.Is(err, models.ErrEmptyPlan):
		err = common.NewNotFoundError("no jobs for technician on date", err).WithErrorCode("EMPTY_PLAN")
	case errors.Is(err, ErrJobNotFound):
		err = common.NewNotFoundError("edited job not found", err).WithErrorCode("JOB_NOT_FOUND")
	case errors.Is(err, ratetable.ErrLocationNotInTable):
		err = common.NewNotFoundError(TagNotInTable, err).WithErrorCode("LOCATION_NOT_IN_TABLE")
	case errors.Is(err, ratetable.ErrOutOfRange):
		err = common.NewUnprocessableError(TagOutOfRange, err).WithErrorCode("OUT_OF_RANGE")
	case errors.Is(err, ratetable.ErrUnknownTier):
		err = common.NewBadRequestError("unknown tier", err).WithErrorCode("UNKNOWN_TIER")
	}

	return common.HandleServiceError(c, err, fallbackMessage)
}
