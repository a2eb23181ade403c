package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/richxcame/visit-pricing/pkg/config"
	"github.com/richxcame/visit-pricing/pkg/httpclient"
	"github.com/richxcame/visit-pricing/pkg/resilience"
	"github.com/richxcame/visit-pricing/pkg/tracing"
)

const (
	googleRoutesBaseURL         = "https://routes.googleapis.com"
	googleComputeRoutesEndpoint = "/directions/v2:computeRoutes"
	googleDistanceFieldMask     = "routes.distanceMeters"
	travelModeDrive             = "DRIVE"
)

// GoogleRoutesProvider implements RoutesProvider with the Google Routes API
type GoogleRoutesProvider struct {
	apiKey string
	client *httpclient.Client
}

// NewGoogleRoutesProvider creates a new Google Routes provider
func NewGoogleRoutesProvider(cfg ProviderConfig) *GoogleRoutesProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleRoutesBaseURL
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	opts := []httpclient.Option{
		httpclient.WithName("google_routes.compute_routes"),
		httpclient.WithExpectedStatus(http.StatusOK),
	}
	if cfg.MaxRetries > 0 {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.MaxRetries + 1
		opts = append(opts, httpclient.WithRetry(retry))
	}

	return &GoogleRoutesProvider{
		apiKey: cfg.APIKey,
		client: httpclient.NewClient(strings.TrimRight(baseURL, "/"), time.Duration(timeout)*time.Second, opts...),
	}
}

// Name returns the provider name
func (g *GoogleRoutesProvider) Name() Provider {
	return ProviderGoogleRoutes
}

// Configured reports whether a usable API key is set
func (g *GoogleRoutesProvider) Configured() bool {
	return config.MapsConfig{APIKey: g.apiKey}.Configured()
}

// ComputeDistance returns the driving distance in meters of the first route
func (g *GoogleRoutesProvider) ComputeDistance(ctx context.Context, origin, destination string) (int64, error) {
	if !g.Configured() {
		return 0, ErrNotConfigured
	}

	req := RouteRequest{
		Origin:      Waypoint{Address: origin},
		Destination: Waypoint{Address: destination},
		TravelMode:  travelModeDrive,
	}
	headers := map[string]string{
		"X-Goog-Api-Key":   g.apiKey,
		"X-Goog-FieldMask": googleDistanceFieldMask,
	}

	var meters int64
	err := tracing.TraceExternalAPI(ctx, "maps", "google_routes", "compute_routes", func(ctx context.Context) error {
		body, err := g.client.Post(ctx, googleComputeRoutesEndpoint, req, headers)
		if err != nil {
			return fmt.Errorf("google routes request failed: %w", err)
		}

		var resp RouteResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to parse routes response: %w", err)
		}

		if len(resp.Routes) == 0 || resp.Routes[0].DistanceMeters == nil {
			return ErrNoRoute
		}

		meters = *resp.Routes[0].DistanceMeters
		return nil
	})
	if err != nil {
		return 0, err
	}

	return meters, nil
}
