package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// placeholderAPIKey is the value shipped in sample env files
const placeholderAPIKey = "PASTE_YOUR_API_KEY_HERE"

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Maps       MapsConfig
	Pricing    PricingConfig
	Sheet      SheetConfig
	Events     EventsConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port                  string
	Environment           string
	ServiceName           string
	ReadTimeout           int
	WriteTimeout          int
	RequestTimeoutSeconds int
	CORSOrigins           string // Comma-separated list of allowed origins
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// MapsConfig holds the routing service settings
type MapsConfig struct {
	APIKey          string
	BaseURL         string
	TimeoutSeconds  int
	MaxRetries      int
	CacheEnabled    bool
	CacheTTLSeconds int
	CachePrefix     string
}

// PricingConfig holds the route classification settings
type PricingConfig struct {
	BaseLocation         string
	PremiumKeyword       string
	RateTablePath        string
	OnRouteLowerBound    float64
	OnRouteUpperBound    float64
	MaxConcurrentLookups int
}

// SheetConfig describes the spreadsheet export layout. Columns are 1-based.
type SheetConfig struct {
	HeaderRows       int
	CityColumn       int
	DateColumn       int
	ValueColumn      int
	NotesColumn      int
	TechnicianColumn int
}

// EventsConfig holds NATS settings for quote events
type EventsConfig struct {
	Enabled bool
	URL     string
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream service
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:                  getEnv("PORT", "8080"),
			Environment:           getEnv("ENVIRONMENT", "development"),
			ServiceName:           serviceName,
			ReadTimeout:           getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:          getEnvAsInt("WRITE_TIMEOUT", 30),
			RequestTimeoutSeconds: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 25),
			CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Maps: MapsConfig{
			APIKey:          getEnv("GOOGLE_ROUTES_API_KEY", ""),
			BaseURL:         getEnv("MAPS_BASE_URL", "https://routes.googleapis.com"),
			TimeoutSeconds:  getEnvAsInt("MAPS_TIMEOUT_SECONDS", 10),
			MaxRetries:      getEnvAsInt("MAPS_MAX_RETRIES", 0),
			CacheEnabled:    getEnvAsBool("DISTANCE_CACHE_ENABLED", true),
			CacheTTLSeconds: getEnvAsInt("DISTANCE_CACHE_TTL_SECONDS", 21600),
			CachePrefix:     getEnv("DISTANCE_CACHE_PREFIX", ""),
		},
		Pricing: PricingConfig{
			BaseLocation:         getEnv("PRICING_BASE_LOCATION", "Toronto"),
			PremiumKeyword:       getEnv("PRICING_PREMIUM_KEYWORD", "SVD"),
			RateTablePath:        getEnv("PRICING_RATE_TABLE_PATH", ""),
			OnRouteLowerBound:    getEnvAsFloat("PRICING_ON_ROUTE_LOWER", -0.05),
			OnRouteUpperBound:    getEnvAsFloat("PRICING_ON_ROUTE_UPPER", 0.25),
			MaxConcurrentLookups: getEnvAsInt("PRICING_MAX_CONCURRENT_LOOKUPS", 4),
		},
		Sheet: SheetConfig{
			HeaderRows:       getEnvAsInt("SHEET_HEADER_ROWS", 3),
			CityColumn:       getEnvAsInt("SHEET_COL_CITY", 3),
			DateColumn:       getEnvAsInt("SHEET_COL_DATE", 4),
			ValueColumn:      getEnvAsInt("SHEET_COL_VALUE", 5),
			NotesColumn:      getEnvAsInt("SHEET_COL_NOTES", 6),
			TechnicianColumn: getEnvAsInt("SHEET_COL_TECHNICIAN", 7),
		},
		Events: EventsConfig{
			Enabled: getEnvAsBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", false),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if cfg.Pricing.OnRouteLowerBound >= cfg.Pricing.OnRouteUpperBound {
		return nil, fmt.Errorf("PRICING_ON_ROUTE_LOWER (%g) must be below PRICING_ON_ROUTE_UPPER (%g)",
			cfg.Pricing.OnRouteLowerBound, cfg.Pricing.OnRouteUpperBound)
	}

	if strings.TrimSpace(cfg.Pricing.BaseLocation) == "" {
		return nil, fmt.Errorf("PRICING_BASE_LOCATION must not be empty")
	}

	if cfg.Pricing.MaxConcurrentLookups <= 0 {
		cfg.Pricing.MaxConcurrentLookups = 1
	}

	if cfg.Maps.CacheTTLSeconds <= 0 {
		cfg.Maps.CacheTTLSeconds = 21600
	}

	return cfg, nil
}

// Configured reports whether a usable routing credential is set
func (c MapsConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != placeholderAPIKey
}

// SettingsFor returns effective breaker settings for a specific upstream service name
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ServiceOverrides[service]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
