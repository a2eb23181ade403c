package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/visit-pricing/internal/dayplan"
	"github.com/richxcame/visit-pricing/internal/ratetable"
	"github.com/richxcame/visit-pricing/internal/routing"
	"github.com/richxcame/visit-pricing/pkg/eventbus"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/richxcame/visit-pricing/pkg/models"
	"github.com/richxcame/visit-pricing/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrAPIKeyNotConfigured means the routing credential is missing
	ErrAPIKeyNotConfigured = errors.New("routing api key not configured")
	// ErrJobNotFound means the edited job is not part of the feed
	ErrJobNotFound = errors.New("edited job not found")
)

// Classifier prices the jobs of a day plan
type Classifier interface {
	Classify(ctx context.Context, plan *models.DayPlan) (*routing.Result, error)
}

// CredentialChecker reports whether the routing credential is usable
type CredentialChecker interface {
	Configured() bool
}

// EventPublisher publishes quote events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// Config holds the pricing service settings
type Config struct {
	PremiumKeyword string
	Source         string
}

// Service prices technician days and edit events
type Service struct {
	classifier  Classifier
	rates       *ratetable.Table
	credentials CredentialChecker
	publisher   EventPublisher
	config      Config
	now         func() time.Time
}

// NewService creates a new pricing service
func NewService(classifier Classifier, rates *ratetable.Table, credentials CredentialChecker, config Config) *Service {
	if config.Source == "" {
		config.Source = "visit-pricing"
	}
	return &Service{
		classifier:  classifier,
		rates:       rates,
		credentials: credentials,
		config:      config,
		now:         time.Now,
	}
}

// SetPublisher enables quote events
func (s *Service) SetPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

// PremiumKeyword returns the notes keyword that selects the premium tier
func (s *Service) PremiumKeyword() string {
	return s.config.PremiumKeyword
}

func (s *Service) configured() bool {
	return s.credentials != nil && s.credentials.Configured()
}

// PriceDay prices the jobs of one technician on one calendar day
func (s *Service) PriceDay(ctx context.Context, jobs []models.Job, technician string, date time.Time) (*DayQuote, error) {
	if !s.configured() {
		return nil, ErrAPIKeyNotConfigured
	}

	plan, err := dayplan.Build(jobs, technician, date)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, plan)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.SubjectDayQuoted, eventbus.DayQuotedData{
		Technician: quote.Technician,
		Date:       quote.Date,
		Anchor:     quote.Anchor,
		Jobs:       quotedJobs(quote.Values),
		QuotedAt:   s.now().UTC(),
	})

	return quote, nil
}

// PriceEdit re-prices the day of the edited job.
// Without a routing credential only the edited job gets a write-back, carrying
// the API key tag. An edited row without technician or date yields no write-backs.
func (s *Service) PriceEdit(ctx context.Context, jobs []models.Job, editedJobID string) (*EditResult, error) {
	edited, ok := findJob(jobs, editedJobID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, editedJobID)
	}

	result := &EditResult{EditedJobID: editedJobID, Values: []WriteBack{}}

	if !s.configured() {
		logger.WarnContext(ctx, "routing api key not configured, tagging edited job",
			zap.String("job_id", editedJobID),
		)
		result.Values = append(result.Values, WriteBack{
			JobID:    edited.ID,
			Location: edited.Location,
			Tier:     edited.Tier,
			Tag:      TagAPIKeyMissing,
		})
		return result, nil
	}

	if strings.TrimSpace(edited.Technician) == "" || edited.Date.IsZero() {
		logger.DebugContext(ctx, "edited job has no technician or date, nothing to price",
			zap.String("job_id", editedJobID),
		)
		return result, nil
	}

	plan, err := dayplan.Build(jobs, edited.Technician, edited.Date)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, plan)
	if err != nil {
		return nil, err
	}

	result.Technician = quote.Technician
	result.Date = quote.Date
	result.Values = quote.Values

	s.publish(ctx, eventbus.SubjectEditPriced, eventbus.EditPricedData{
		EditedJobID: editedJobID,
		Technician:  quote.Technician,
		Date:        quote.Date,
		Jobs:        quotedJobs(quote.Values),
		PricedAt:    s.now().UTC(),
	})

	return result, nil
}

// PriceAll prices every (technician, day) group, ordered by first appearance
func (s *Service) PriceAll(ctx context.Context, jobs []models.Job) ([]*DayQuote, error) {
	if !s.configured() {
		return nil, ErrAPIKeyNotConfigured
	}

	plans := dayplan.GroupAll(jobs)
	quotes := make([]*DayQuote, 0, len(plans))
	for _, plan := range plans {
		quote, err := s.quote(ctx, plan)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)

		s.publish(ctx, eventbus.SubjectDayQuoted, eventbus.DayQuotedData{
			Technician: quote.Technician,
			Date:       quote.Date,
			Anchor:     quote.Anchor,
			Jobs:       quotedJobs(quote.Values),
			QuotedAt:   s.now().UTC(),
		})
	}

	logger.InfoContext(ctx, "priced all day plans", zap.Int("days", len(quotes)), zap.Int("jobs", len(jobs)))
	return quotes, nil
}

// QuoteLocation returns the table prices of a location for a tier
func (s *Service) QuoteLocation(location string, tier models.Tier) (*RateQuote, error) {
	if tier == "" {
		tier = models.TierStandard
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %s", ratetable.ErrUnknownTier, tier)
	}

	km, err := s.rates.ReferenceDistance(location)
	if err != nil {
		return nil, err
	}
	full, err := s.rates.Price(km, tier)
	if err != nil {
		return nil, err
	}
	floor, err := s.rates.Floor(tier)
	if err != nil {
		return nil, err
	}

	return &RateQuote{
		Location:         ratetable.NormalizeLocation(location),
		Tier:             tier,
		ReferenceKm:      km,
		FullServiceValue: full,
		Floor:            floor,
	}, nil
}

// Locations lists the locations of the rate table
func (s *Service) Locations() []string {
	return s.rates.Locations()
}

func (s *Service) quote(ctx context.Context, plan *models.DayPlan) (*DayQuote, error) {
	result, err := s.classifier.Classify(ctx, plan)
	if err != nil {
		return nil, err
	}

	quote := &DayQuote{
		Technician: result.Technician,
		Date:       result.Date.Format(validation.DateLayout),
		Anchor:     result.Anchor,
		Values:     make([]WriteBack, 0, len(result.Quotes)),
	}
	for _, q := range result.Quotes {
		quote.Values = append(quote.Values, writeBackFromQuote(q))
	}
	return quote, nil
}

// publish emits data on subject; the subject doubles as the event type
func (s *Service) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}

	event, err := eventbus.NewEvent(subject, s.config.Source, data)
	if err != nil {
		logger.WarnContext(ctx, "failed to build pricing event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish pricing event", zap.String("subject", subject), zap.Error(err))
	}
}

func findJob(jobs []models.Job, id string) (models.Job, bool) {
	for _, job := range jobs {
		if job.ID == id {
			return job, true
		}
	}
	return models.Job{}, false
}

func quotedJobs(values []WriteBack) []eventbus.QuotedJob {
	out := make([]eventbus.QuotedJob, 0, len(values))
	for _, v := range values {
		out = append(out, eventbus.QuotedJob{
			JobID:    v.JobID,
			Location: v.Location,
			Tier:     string(v.Tier),
			Role:     string(v.Role),
			Price:    v.Price,
			Tag:      v.Tag,
		})
	}
	return out
}
