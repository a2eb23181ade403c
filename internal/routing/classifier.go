package routing

import (
	"context"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/visit-pricing/internal/maps"
	"github.com/richxcame/visit-pricing/internal/ratetable"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/richxcame/visit-pricing/pkg/models"
	"github.com/richxcame/visit-pricing/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "routing"

// ratioTolerance absorbs float error so that decimal bounds such as -0.05
// compare the way they read
const ratioTolerance = 1e-9

var (
	classifiedJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visit_pricing",
		Name:      "classified_jobs_total",
		Help:      "Jobs classified by role",
	}, []string{"role"})

	detourRatios = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "visit_pricing",
		Name:      "detour_ratio",
		Help:      "Detour ratios computed for satellite jobs",
		Buckets:   []float64{-0.05, 0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)

// DistanceProvider resolves driving distances. Failures are reported as
// maps.Unavailable, never as errors.
type DistanceProvider interface {
	Distance(ctx context.Context, origin, destination string) maps.Distance
}

// Config holds the classification settings
type Config struct {
	BaseLocation         string
	OnRouteLowerBound    float64
	OnRouteUpperBound    float64
	MaxConcurrentLookups int
}

// DefaultConfig returns the Toronto base with the [-0.05, 0.25) on-route band
func DefaultConfig() Config {
	return Config{
		BaseLocation:         "Toronto",
		OnRouteLowerBound:    -0.05,
		OnRouteUpperBound:    0.25,
		MaxConcurrentLookups: 4,
	}
}

// Classifier picks the anchor of a day plan and prices every job
type Classifier struct {
	distances DistanceProvider
	rates     *ratetable.Table
	config    Config
}

// NewClassifier creates a classifier
func NewClassifier(distances DistanceProvider, rates *ratetable.Table, config Config) *Classifier {
	if config.MaxConcurrentLookups <= 0 {
		config.MaxConcurrentLookups = 1
	}
	return &Classifier{
		distances: distances,
		rates:     rates,
		config:    config,
	}
}

// Config returns the classifier settings
func (c *Classifier) Config() Config {
	return c.config
}

// Classify prices every job of the plan.
// The anchor is the job farthest from base and always gets full value; other
// jobs get the tier floor when the base→job→anchor detour ratio falls in the
// on-route band and full value otherwise.
func (c *Classifier) Classify(ctx context.Context, plan *models.DayPlan) (*Result, error) {
	if plan.Len() == 0 {
		return nil, models.ErrEmptyPlan
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "routing.Classify")
	defer span.End()
	span.SetAttributes(tracing.DayPlanAttributes(plan.Technician, plan.Date.Format("2006-01-02"), plan.Len())...)

	log := logger.WithContext(ctx).With(
		zap.String("technician", plan.Technician),
		zap.Time("date", plan.Date),
		zap.Int("jobs", plan.Len()),
	)

	result := &Result{
		Technician: plan.Technician,
		Date:       plan.Date,
		Quotes:     make([]JobQuote, plan.Len()),
	}

	if plan.Len() == 1 {
		result.Quotes[0] = c.fullValue(plan.Jobs[0], RoleSingle, ReasonSingleJob)
		c.record(result)
		return result, nil
	}

	fromBase, err := c.lookupAll(ctx, plan.Len(), func(i int) (string, string) {
		return c.config.BaseLocation, plan.Jobs[i].Location
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	anchorIdx := selectAnchor(fromBase)
	anchor := plan.Jobs[anchorIdx]
	anchorDistance := fromBase[anchorIdx]
	result.Anchor = anchor.ID
	span.SetAttributes(attribute.String("routing.anchor", anchor.ID))

	quote := c.fullValue(anchor, RoleAnchor, ReasonFarthestFromBase)
	quote.DistanceFromBase = anchorDistance
	result.Quotes[anchorIdx] = quote

	if !anchorDistance.Positive() {
		log.Warn("anchor distance unusable, pricing every job at full value",
			zap.String("anchor", anchor.ID),
			zap.Stringer("anchor_distance", anchorDistance),
		)
		for i, job := range plan.Jobs {
			if i == anchorIdx {
				continue
			}
			q := c.fullValue(job, RoleIndependent, ReasonAnchorUnusable)
			q.DistanceFromBase = fromBase[i]
			result.Quotes[i] = q
		}
		c.record(result)
		return result, nil
	}

	toAnchor, err := c.lookupAll(ctx, plan.Len(), func(i int) (string, string) {
		if i == anchorIdx || !fromBase[i].Available {
			return "", ""
		}
		return plan.Jobs[i].Location, anchor.Location
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	for i, job := range plan.Jobs {
		if i == anchorIdx {
			continue
		}
		result.Quotes[i] = c.classifySatellite(job, fromBase[i], toAnchor[i], anchorDistance)
		span.AddEvent("satellite classified", trace.WithAttributes(
			tracing.JobIDKey.String(job.ID),
			attribute.String("routing.role", string(result.Quotes[i].Role)),
		))
		log.Debug("satellite classified",
			zap.String("job_id", job.ID),
			zap.String("role", string(result.Quotes[i].Role)),
			zap.String("reason", result.Quotes[i].Reason),
		)
	}

	log.Info("day plan classified", zap.String("anchor", anchor.ID), zap.Stringer("anchor_distance", anchorDistance))
	c.record(result)
	return result, nil
}

func (c *Classifier) classifySatellite(job models.Job, fromBase, toAnchor, anchorDistance maps.Distance) JobQuote {
	if !fromBase.Available || !toAnchor.Available {
		q := c.fullValue(job, RoleIndependent, ReasonDistanceUnavailable)
		q.DistanceFromBase = fromBase
		return q
	}

	ratio := float64(fromBase.Meters+toAnchor.Meters)/float64(anchorDistance.Meters) - 1
	detourRatios.Observe(ratio)

	var q JobQuote
	if c.onRoute(ratio) {
		q = c.floor(job)
	} else {
		q = c.fullValue(job, RoleIndependent, ReasonOutsideDetourBand)
	}
	q.DistanceFromBase = fromBase
	q.Ratio = &ratio
	return q
}

func (c *Classifier) onRoute(ratio float64) bool {
	return ratio >= c.config.OnRouteLowerBound-ratioTolerance &&
		ratio < c.config.OnRouteUpperBound-ratioTolerance
}

// lookupAll resolves n distances concurrently. Results are stored by input
// index. Indexes whose pair returns an empty origin are skipped and left Unavailable.
func (c *Classifier) lookupAll(ctx context.Context, n int, pair func(i int) (string, string)) ([]maps.Distance, error) {
	out := make([]maps.Distance, n)

	var g errgroup.Group
	g.SetLimit(c.config.MaxConcurrentLookups)
	for i := 0; i < n; i++ {
		origin, destination := pair(i)
		if origin == "" {
			continue
		}
		g.Go(func() error {
			out[i] = c.distances.Distance(ctx, origin, destination)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("distance lookups interrupted: %w", err)
	}
	return out, nil
}

func (c *Classifier) fullValue(job models.Job, role Role, reason string) JobQuote {
	q := newQuote(job, role, reason)
	price, err := c.rates.FullServiceValue(job.Location, job.Tier)
	if err != nil {
		q.Err = err
		return q
	}
	q.Price = &price
	return q
}

func (c *Classifier) floor(job models.Job) JobQuote {
	q := newQuote(job, RoleOnRoute, ReasonWithinDetourBand)
	price, err := c.rates.Floor(job.Tier)
	if err != nil {
		q.Err = err
		return q
	}
	q.Price = &price
	return q
}

func (c *Classifier) record(result *Result) {
	for _, q := range result.Quotes {
		classifiedJobs.WithLabelValues(string(q.Role)).Inc()
	}
}

func newQuote(job models.Job, role Role, reason string) JobQuote {
	return JobQuote{
		JobID:    job.ID,
		Location: job.Location,
		Tier:     job.Tier,
		Role:     role,
		Reason:   reason,
	}
}

// selectAnchor returns the index of the job farthest from base. Unavailable
// ranks as farthest; ties keep the earliest index.
func selectAnchor(fromBase []maps.Distance) int {
	best := 0
	for i := 1; i < len(fromBase); i++ {
		if rank(fromBase[i]) > rank(fromBase[best]) {
			best = i
		}
	}
	return best
}

func rank(d maps.Distance) float64 {
	if !d.Available {
		return math.Inf(1)
	}
	return float64(d.Meters)
}
