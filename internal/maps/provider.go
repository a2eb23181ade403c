package maps

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/visit-pricing/pkg/config"
)

var (
	// ErrNoRoute is returned when the routing service answers without a usable route
	ErrNoRoute = errors.New("no route in response")
	// ErrNotConfigured is returned when no routing credential is set
	ErrNotConfigured = errors.New("routing api key not configured")
)

// IsNoRoute reports whether err is a healthy answer that simply had no route
func IsNoRoute(err error) bool {
	return errors.Is(err, ErrNoRoute)
}

// RoutesProvider computes driving distances between two free-text addresses
type RoutesProvider interface {
	ComputeDistance(ctx context.Context, origin, destination string) (int64, error)
	Configured() bool
	Name() Provider
}

// ProviderConfig holds configuration for a routing provider
type ProviderConfig struct {
	Provider       Provider `json:"provider"`
	APIKey         string   `json:"api_key"`
	BaseURL        string   `json:"base_url,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	MaxRetries     int      `json:"max_retries,omitempty"`
}

// Config holds the distance service configuration
type Config struct {
	Primary ProviderConfig `json:"primary"`

	CacheEnabled    bool   `json:"cache_enabled"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
	CachePrefix     string `json:"cache_prefix"`
}

// DefaultConfig caches distances for six hours
func DefaultConfig() Config {
	return Config{
		Primary: ProviderConfig{
			Provider:       ProviderGoogleRoutes,
			BaseURL:        googleRoutesBaseURL,
			TimeoutSeconds: 10,
		},
		CacheEnabled:    true,
		CacheTTLSeconds: 21600,
	}
}

// ConfigFromApp maps the environment-driven settings onto a service Config
func ConfigFromApp(cfg config.MapsConfig) Config {
	c := DefaultConfig()
	c.Primary.APIKey = cfg.APIKey
	if cfg.BaseURL != "" {
		c.Primary.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		c.Primary.TimeoutSeconds = cfg.TimeoutSeconds
	}
	c.Primary.MaxRetries = cfg.MaxRetries
	c.CacheEnabled = cfg.CacheEnabled
	if cfg.CacheTTLSeconds > 0 {
		c.CacheTTLSeconds = cfg.CacheTTLSeconds
	}
	c.CachePrefix = cfg.CachePrefix
	return c
}

func (c Config) cacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) lookupTimeout() time.Duration {
	if c.Primary.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Primary.TimeoutSeconds) * time.Second
}
