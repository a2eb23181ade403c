package pricing

import (
	"fmt"

	"github.com/richxcame/visit-pricing/internal/maps"
	"github.com/richxcame/visit-pricing/internal/ratetable"
	"github.com/richxcame/visit-pricing/internal/routing"
	"github.com/richxcame/visit-pricing/pkg/config"
	"github.com/richxcame/visit-pricing/pkg/logger"
	redisclient "github.com/richxcame/visit-pricing/pkg/redis"
	"github.com/richxcame/visit-pricing/pkg/resilience"
	"go.uber.org/zap"
)

// routingDependency names the routing API in breaker overrides and logs
const routingDependency = "google-routes-api"

// Components is the wired pricing stack shared by the server and the CLI
type Components struct {
	Rates      *ratetable.Table
	Distances  *maps.Service
	Classifier *routing.Classifier
	Service    *Service
}

// Setup builds the rate table, distance service, classifier and pricing
// service from configuration. redis may be nil.
func Setup(cfg *config.Config, redis redisclient.ClientInterface) (*Components, error) {
	rates := ratetable.Default()
	if cfg.Pricing.RateTablePath != "" {
		loaded, err := ratetable.LoadFile(cfg.Pricing.RateTablePath)
		if err != nil {
			return nil, fmt.Errorf("load rate table: %w", err)
		}
		rates = loaded
		logger.Info("Rate table loaded", zap.String("path", cfg.Pricing.RateTablePath), zap.Int("locations", len(rates.Locations())))
	}

	mapsCfg := maps.ConfigFromApp(cfg.Maps)
	distances := maps.NewService(mapsCfg, maps.NewGoogleRoutesProvider(mapsCfg.Primary), redis)
	if !distances.Configured() {
		logger.Warn("GOOGLE_ROUTES_API_KEY not set, multi-stop days cannot be priced")
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		cbCfg := cfg.Resilience.CircuitBreaker.SettingsFor(routingDependency)
		settings := resilience.BuildSettings(fmt.Sprintf("%s-routes", cfg.Server.ServiceName),
			cbCfg.IntervalSeconds, cbCfg.TimeoutSeconds, cbCfg.FailureThreshold, cbCfg.SuccessThreshold)
		settings.Harmless = maps.IsNoRoute
		distances.SetCircuitBreaker(resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation(routingDependency)))
		logger.Info("Circuit breaker enabled for routing API")
	}

	classifier := routing.NewClassifier(distances, rates, routing.Config{
		BaseLocation:         cfg.Pricing.BaseLocation,
		OnRouteLowerBound:    cfg.Pricing.OnRouteLowerBound,
		OnRouteUpperBound:    cfg.Pricing.OnRouteUpperBound,
		MaxConcurrentLookups: cfg.Pricing.MaxConcurrentLookups,
	})

	service := NewService(classifier, rates, distances, Config{
		PremiumKeyword: cfg.Pricing.PremiumKeyword,
		Source:         cfg.Server.ServiceName,
	})

	return &Components{
		Rates:      rates,
		Distances:  distances,
		Classifier: classifier,
		Service:    service,
	}, nil
}
