package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPricingEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "REDIS_ENABLED", "GOOGLE_ROUTES_API_KEY", "MAPS_BASE_URL",
		"MAPS_MAX_RETRIES", "DISTANCE_CACHE_TTL_SECONDS", "PRICING_BASE_LOCATION",
		"PRICING_PREMIUM_KEYWORD", "PRICING_ON_ROUTE_LOWER", "PRICING_ON_ROUTE_UPPER",
		"PRICING_MAX_CONCURRENT_LOOKUPS", "SHEET_HEADER_ROWS", "SHEET_COL_CITY", "CB_SERVICE_OVERRIDES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearPricingEnv(t)

	cfg, err := Load("visit-pricing")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "visit-pricing", cfg.Server.ServiceName)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "https://routes.googleapis.com", cfg.Maps.BaseURL)
	assert.Equal(t, 0, cfg.Maps.MaxRetries)
	assert.Equal(t, 21600, cfg.Maps.CacheTTLSeconds)
	assert.Equal(t, "Toronto", cfg.Pricing.BaseLocation)
	assert.Equal(t, "SVD", cfg.Pricing.PremiumKeyword)
	assert.Equal(t, -0.05, cfg.Pricing.OnRouteLowerBound)
	assert.Equal(t, 0.25, cfg.Pricing.OnRouteUpperBound)
	assert.Equal(t, 4, cfg.Pricing.MaxConcurrentLookups)
	assert.Equal(t, 3, cfg.Sheet.HeaderRows)
	assert.Equal(t, 3, cfg.Sheet.CityColumn)
	assert.Equal(t, 7, cfg.Sheet.TechnicianColumn)
	assert.False(t, cfg.Maps.Configured())
}

func TestLoadCustomValues(t *testing.T) {
	clearPricingEnv(t)
	t.Setenv("GOOGLE_ROUTES_API_KEY", "abc123")
	t.Setenv("PRICING_BASE_LOCATION", "Ottawa")
	t.Setenv("PRICING_ON_ROUTE_LOWER", "-0.1")
	t.Setenv("PRICING_ON_ROUTE_UPPER", "0.3")
	t.Setenv("PRICING_MAX_CONCURRENT_LOOKUPS", "0")

	cfg, err := Load("visit-pricing")
	require.NoError(t, err)

	assert.True(t, cfg.Maps.Configured())
	assert.Equal(t, "Ottawa", cfg.Pricing.BaseLocation)
	assert.Equal(t, -0.1, cfg.Pricing.OnRouteLowerBound)
	assert.Equal(t, 0.3, cfg.Pricing.OnRouteUpperBound)
	assert.Equal(t, 1, cfg.Pricing.MaxConcurrentLookups)
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	clearPricingEnv(t)
	t.Setenv("PRICING_ON_ROUTE_LOWER", "0.3")
	t.Setenv("PRICING_ON_ROUTE_UPPER", "0.25")

	_, err := Load("visit-pricing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRICING_ON_ROUTE_LOWER")
}

func TestLoadRejectsBadBreakerOverrides(t *testing.T) {
	clearPricingEnv(t)
	t.Setenv("CB_SERVICE_OVERRIDES", "{not-json")

	_, err := Load("visit-pricing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CB_SERVICE_OVERRIDES")
}

func TestMapsConfigConfigured(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		expect bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"placeholder", "PASTE_YOUR_API_KEY_HERE", false},
		{"real key", "AIzaSyExample", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, MapsConfig{APIKey: tt.key}.Configured())
		})
	}
}

func TestSettingsFor(t *testing.T) {
	cb := CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		TimeoutSeconds:   30,
		IntervalSeconds:  60,
		ServiceOverrides: map[string]CircuitBreakerSettings{
			"google-routes": {FailureThreshold: 3, TimeoutSeconds: 10},
		},
	}

	override := cb.SettingsFor("google-routes")
	assert.Equal(t, 3, override.FailureThreshold)
	assert.Equal(t, 1, override.SuccessThreshold)
	assert.Equal(t, 10, override.TimeoutSeconds)
	assert.Equal(t, 60, override.IntervalSeconds)

	defaults := cb.SettingsFor("other")
	assert.Equal(t, 5, defaults.FailureThreshold)
	assert.Equal(t, 30, defaults.TimeoutSeconds)
}
