package maps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutesServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/directions/v2:computeRoutes", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "routes.distanceMeters", r.Header.Get("X-Goog-FieldMask"))

		var req RouteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "DRIVE", req.TravelMode)
		assert.NotEmpty(t, req.Origin.Address)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGoogleRoutesProvider_ComputeDistance(t *testing.T) {
	server := newRoutesServer(t, http.StatusOK, `{"routes":[{"distanceMeters":68512}]}`, nil)
	defer server.Close()

	provider := NewGoogleRoutesProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL})

	meters, err := provider.ComputeDistance(context.Background(), "Toronto", "Hamilton")
	require.NoError(t, err)
	assert.Equal(t, int64(68512), meters)
}

func TestGoogleRoutesProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non success status", http.StatusForbidden, `{"error":{"status":"PERMISSION_DENIED"}}`},
		{"success status other than 200", http.StatusAccepted, `{"routes":[{"distanceMeters":68512}]}`},
		{"malformed body", http.StatusOK, `{"routes":`},
		{"no routes", http.StatusOK, `{}`},
		{"missing distance", http.StatusOK, `{"routes":[{}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRoutesServer(t, tt.status, tt.body, nil)
			defer server.Close()

			provider := NewGoogleRoutesProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
			_, err := provider.ComputeDistance(context.Background(), "Toronto", "Hamilton")
			assert.Error(t, err)
		})
	}
}

func TestGoogleRoutesProvider_NotConfigured(t *testing.T) {
	for _, key := range []string{"", "  ", "PASTE_YOUR_API_KEY_HERE"} {
		provider := NewGoogleRoutesProvider(ProviderConfig{APIKey: key})
		assert.False(t, provider.Configured())

		_, err := provider.ComputeDistance(context.Background(), "Toronto", "Hamilton")
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}

func TestGoogleRoutesProvider_RetriesOnlyWhenConfigured(t *testing.T) {
	var calls int32
	server := newRoutesServer(t, http.StatusServiceUnavailable, `unavailable`, &calls)
	defer server.Close()

	provider := NewGoogleRoutesProvider(ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := provider.ComputeDistance(context.Background(), "Toronto", "Hamilton")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestServiceWithGoogleProvider_EndToEnd(t *testing.T) {
	var calls int32
	server := newRoutesServer(t, http.StatusOK, `{"routes":[{"distanceMeters":45000}]}`, &calls)
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Primary.APIKey = "test-key"
	cfg.Primary.BaseURL = server.URL
	svc := NewService(cfg, NewGoogleRoutesProvider(cfg.Primary), nil)

	assert.Equal(t, Meters(45000), svc.Distance(context.Background(), "Toronto", "Brampton"))
	assert.Equal(t, Meters(45000), svc.Distance(context.Background(), "Toronto", "Brampton"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
