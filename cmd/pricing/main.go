package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/visit-pricing/internal/maps"
	"github.com/richxcame/visit-pricing/internal/pricing"
	"github.com/richxcame/visit-pricing/internal/ratetable"
	"github.com/richxcame/visit-pricing/pkg/common"
	"github.com/richxcame/visit-pricing/pkg/config"
	"github.com/richxcame/visit-pricing/pkg/errors"
	"github.com/richxcame/visit-pricing/pkg/eventbus"
	"github.com/richxcame/visit-pricing/pkg/health"
	"github.com/richxcame/visit-pricing/pkg/logger"
	"github.com/richxcame/visit-pricing/pkg/middleware"
	"github.com/richxcame/visit-pricing/pkg/models"
	redisClient "github.com/richxcame/visit-pricing/pkg/redis"
	"github.com/richxcame/visit-pricing/pkg/swagger"
	"github.com/richxcame/visit-pricing/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName = "visit-pricing"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting visit pricing service",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	// Initialize Sentry for error tracking
	errors.RegisterExpected(
		models.ErrEmptyPlan,
		ratetable.ErrLocationNotInTable,
		ratetable.ErrOutOfRange,
		ratetable.ErrUnknownTier,
		pricing.ErrJobNotFound,
		pricing.ErrAPIKeyNotConfigured,
	)
	sentryConfig := errors.DefaultSentryConfig(serviceName)
	sentryConfig.Release = version
	if sentryConfig.Enabled() {
		if err := errors.InitSentry(sentryConfig); err != nil {
			logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
		} else {
			defer errors.Flush(2 * time.Second)
			logger.Info("Sentry error tracking initialized successfully")
		}
	}

	// Initialize OpenTelemetry tracer
	tracerCfg := tracing.ConfigFromEnv(serviceName, version, cfg.Server.Environment)
	tp, err := tracing.InitTracer(tracerCfg, logger.Get())
	if err != nil {
		logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer", zap.Error(err))
			}
		}()
		logger.Info("OpenTelemetry tracing initialized successfully")
	}

	healthChecks := make(map[string]func() error)

	var redis *redisClient.Client
	if cfg.Redis.Enabled {
		redis, err = redisClient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
		healthChecks["redis"] = health.NewCachedChecker(health.RedisChecker(redis, health.DefaultTimeout), 5*time.Second).Check
	} else {
		logger.Info("Redis disabled, caching distances in memory")
	}

	var cache redisClient.ClientInterface
	if redis != nil {
		cache = redis
	}
	components, err := pricing.Setup(cfg, cache)
	if err != nil {
		logger.Fatal("Failed to set up pricing", zap.Error(err))
	}

	healthChecks["routing_api_key"] = health.ConditionChecker(components.Distances.Configured, "routing api key not configured")
	if breaker := components.Distances.CircuitBreaker(); breaker != nil {
		healthChecks["routing_breaker"] = health.BreakerChecker(breaker)
	}

	if cfg.Events.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.Events.URL
		busCfg.Name = serviceName
		bus, err := eventbus.New(busCfg)
		if err != nil {
			logger.Warn("Failed to connect to NATS, quote events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			components.Service.SetPublisher(bus)
			healthChecks["nats"] = health.ConditionChecker(bus.Connected, "nats disconnected")
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(common.NoRouteHandler())
	router.NoMethod(common.NoMethodHandler())
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))

	if tracerCfg.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}

	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": serviceName, "version": version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	swagger.RegisterRoutes(router, "Visit Pricing API")

	api := router.Group("/api/v1/pricing")
	pricing.NewHandler(components.Service).RegisterRoutes(api)
	maps.NewHandler(components.Distances).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
