package maps

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/visit-pricing/pkg/logger"
	redisclient "github.com/richxcame/visit-pricing/pkg/redis"
	"github.com/richxcame/visit-pricing/pkg/resilience"
	"github.com/richxcame/visit-pricing/pkg/tracing"
	"go.uber.org/zap"
)

const (
	resultCacheHit    = "cache_hit"
	resultFetched     = "fetched"
	resultUnavailable = "unavailable"
)

var (
	distanceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "visit_pricing",
		Name:      "distance_lookups_total",
		Help:      "Distance lookups by outcome",
	}, []string{"result"})

	distanceLookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "visit_pricing",
		Name:      "distance_lookup_duration_seconds",
		Help:      "Latency of distance lookups including cache access",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"result"})
)

// Service resolves driving distances with caching and upstream protection.
// Lookups never return an error: any failure is reported as Unavailable.
type Service struct {
	provider RoutesProvider
	cache    DistanceCache
	config   Config
	breaker  *resilience.CircuitBreaker
}

// NewService creates a distance service. When redis is nil an in-process cache is used.
func NewService(config Config, provider RoutesProvider, redis redisclient.ClientInterface) *Service {
	var cache DistanceCache
	if config.CacheEnabled {
		if redis != nil {
			cache = NewRedisCache(redis)
		} else {
			cache = NewMemoryCache()
		}
	}

	return &Service{
		provider: provider,
		cache:    cache,
		config:   config,
	}
}

// SetCircuitBreaker protects upstream calls with the given breaker
func (s *Service) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	s.breaker = cb
}

// CircuitBreaker returns the configured breaker, if any
func (s *Service) CircuitBreaker() *resilience.CircuitBreaker {
	return s.breaker
}

// Configured reports whether the routing provider has a usable credential
func (s *Service) Configured() bool {
	return s.provider != nil && s.provider.Configured()
}

// Distance returns the driving distance from origin to destination
func (s *Service) Distance(ctx context.Context, origin, destination string) Distance {
	ctx, span := tracing.StartSpan(ctx, "maps", "maps.Distance")
	defer span.End()
	span.SetAttributes(tracing.RouteAttributes(origin, destination)...)

	start := time.Now()
	d, result := s.lookup(ctx, origin, destination)
	if d.Available {
		tracing.AddSpanAttributes(ctx, tracing.DistanceKey.Int64(d.Meters))
	}
	distanceLookups.WithLabelValues(result).Inc()
	distanceLookupDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return d
}

func (s *Service) lookup(ctx context.Context, origin, destination string) (Distance, string) {
	log := logger.WithContext(ctx).With(
		zap.String("origin", origin),
		zap.String("destination", destination),
	)

	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		log.Warn("distance lookup with empty location")
		return Unavailable, resultUnavailable
	}

	key := CacheKey(s.config.CachePrefix, origin, destination)
	if s.cache != nil {
		meters, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("distance cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			log.Debug("distance from cache", zap.Int64("meters", meters))
			return Meters(meters), resultCacheHit
		}
	}

	if !s.Configured() {
		log.Warn("routing api key not configured")
		return Unavailable, resultUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.lookupTimeout())
	defer cancel()

	meters, err := resilience.Call(ctx, s.breaker, func(ctx context.Context) (int64, error) {
		return s.provider.ComputeDistance(ctx, origin, destination)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			log.Warn("routing circuit open, distance unavailable", zap.Error(err))
		} else {
			log.Error("distance lookup failed", zap.Error(err))
		}
		return Unavailable, resultUnavailable
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, meters, s.config.cacheTTL()); err != nil {
			log.Warn("distance cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	log.Info("distance fetched", zap.Int64("meters", meters), zap.String("provider", string(s.provider.Name())))
	return Meters(meters), resultFetched
}
