package routing

import (
	"time"

	"github.com/richxcame/visit-pricing/internal/maps"
	"github.com/richxcame/visit-pricing/pkg/models"
)

// Role describes how a job was priced within its day
type Role string

const (
	RoleSingle      Role = "single"
	RoleAnchor      Role = "anchor"
	RoleOnRoute     Role = "on_route"
	RoleIndependent Role = "independent"
)

// Reasons recorded on every quote for observability
const (
	ReasonSingleJob           = "single_job"
	ReasonFarthestFromBase    = "farthest_from_base"
	ReasonWithinDetourBand    = "detour_within_band"
	ReasonOutsideDetourBand   = "detour_outside_band"
	ReasonAnchorUnusable      = "anchor_distance_unusable"
	ReasonDistanceUnavailable = "distance_unavailable"
)

// JobQuote is the priced outcome of one job. Exactly one of Price and Err is set.
type JobQuote struct {
	JobID            string        `json:"job_id"`
	Location         string        `json:"location"`
	Tier             models.Tier   `json:"tier"`
	Role             Role          `json:"role"`
	Price            *float64      `json:"price,omitempty"`
	Err              error         `json:"-"`
	DistanceFromBase maps.Distance `json:"distance_from_base"`
	Ratio            *float64      `json:"detour_ratio,omitempty"`
	Reason           string        `json:"reason"`
}

// Priced reports whether the rate table produced a price for the job
func (q JobQuote) Priced() bool {
	return q.Err == nil && q.Price != nil
}

// Result is the classification of one day plan, quotes in input order
type Result struct {
	Technician string     `json:"technician"`
	Date       time.Time  `json:"date"`
	Anchor     string     `json:"anchor,omitempty"`
	Quotes     []JobQuote `json:"quotes"`
}

// AnchorQuote returns the anchor's quote, or nil for single-job plans
func (r *Result) AnchorQuote() *JobQuote {
	for i := range r.Quotes {
		if r.Quotes[i].Role == RoleAnchor {
			return &r.Quotes[i]
		}
	}
	return nil
}
