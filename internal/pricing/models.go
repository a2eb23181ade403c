package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/visit-pricing/internal/routing"
	"github.com/richxcame/visit-pricing/pkg/models"
	"github.com/richxcame/visit-pricing/pkg/validation"
)

// JobInput is one row of the job feed
type JobInput struct {
	ID         string `json:"id" validate:"required"`
	Location   string `json:"location" validate:"required"`
	Tier       string `json:"tier,omitempty" validate:"omitempty,service_tier"`
	Notes      string `json:"notes,omitempty"`
	Technician string `json:"technician" validate:"required"`
	Date       string `json:"date" validate:"required,calendar_date"`
}

// ToJob converts the row to a Job. An explicit tier wins over the notes keyword.
func (in JobInput) ToJob(premiumKeyword string) (models.Job, error) {
	date, err := time.Parse(validation.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return models.Job{}, fmt.Errorf("job %s: invalid date %q: %w", in.ID, in.Date, err)
	}

	tier := models.Tier(strings.ToLower(strings.TrimSpace(in.Tier)))
	if tier == "" {
		tier = models.TierFromNotes(in.Notes, premiumKeyword)
	}

	return models.Job{
		ID:         in.ID,
		Location:   in.Location,
		Tier:       tier,
		Technician: in.Technician,
		Date:       date,
	}, nil
}

// DayPlanRequest asks for the prices of one technician's day
type DayPlanRequest struct {
	Technician string     `json:"technician" validate:"required"`
	Date       string     `json:"date" validate:"required,calendar_date"`
	Jobs       []JobInput `json:"jobs" validate:"required,min=1,dive"`
}

// EditRequest re-prices the day of an edited job
type EditRequest struct {
	EditedJobID string     `json:"edited_job_id" validate:"required"`
	Jobs        []JobInput `json:"jobs" validate:"required,min=1,dive"`
}

// BatchRequest prices every technician day found in the feed
type BatchRequest struct {
	Jobs []JobInput `json:"jobs" validate:"required,min=1,dive"`
}

// RateQuery looks up the table price of a location
type RateQuery struct {
	Location string `form:"location" binding:"required"`
	Tier     string `form:"tier"`
}

// WriteBack is the value written for one job: a price or a text tag
type WriteBack struct {
	JobID                  string       `json:"job_id"`
	Location               string       `json:"location"`
	Tier                   models.Tier  `json:"tier"`
	Role                   routing.Role `json:"role,omitempty"`
	Price                  *float64     `json:"price,omitempty"`
	Tag                    string       `json:"tag,omitempty"`
	DistanceFromBaseMeters *int64       `json:"distance_from_base_meters,omitempty"`
	DetourRatio            *float64     `json:"detour_ratio,omitempty"`
	Reason                 string       `json:"reason,omitempty"`
}

// Value returns the cell text for the write-back
func (w WriteBack) Value() string {
	if w.Price != nil {
		return FormatPrice(*w.Price)
	}
	return w.Tag
}

// DayQuote holds the write-backs of one technician day, in input order
type DayQuote struct {
	Technician string      `json:"technician"`
	Date       string      `json:"date"`
	Anchor     string      `json:"anchor_job_id,omitempty"`
	Values     []WriteBack `json:"values"`
}

// EditResult is the outcome of processing an edit. Values is empty when the
// edited row has nothing to price.
type EditResult struct {
	EditedJobID string      `json:"edited_job_id"`
	Technician  string      `json:"technician,omitempty"`
	Date        string      `json:"date,omitempty"`
	Values      []WriteBack `json:"values"`
}

// RateQuote describes the fixed-rate prices of a location
type RateQuote struct {
	Location         string      `json:"location"`
	Tier             models.Tier `json:"tier"`
	ReferenceKm      float64     `json:"reference_km"`
	FullServiceValue float64     `json:"full_service_value"`
	Floor            float64     `json:"floor"`
}

func writeBackFromQuote(q routing.JobQuote) WriteBack {
	w := WriteBack{
		JobID:       q.JobID,
		Location:    q.Location,
		Tier:        q.Tier,
		Role:        q.Role,
		DetourRatio: q.Ratio,
		Reason:      q.Reason,
	}
	if q.DistanceFromBase.Available {
		meters := q.DistanceFromBase.Meters
		w.DistanceFromBaseMeters = &meters
	}
	if q.Priced() {
		price := *q.Price
		w.Price = &price
	} else {
		w.Tag = TagFor(q.Err)
	}
	return w
}
