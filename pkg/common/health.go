package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus represents the status of a single health check
type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Timestamp string `json:"timestamp"`
}

var startTime = time.Now()

// HealthCheck returns a health check handler
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return probe(serviceName, version, "healthy")
}

// LivenessProbe always answers 200 while the process is serving
func LivenessProbe(serviceName, version string) gin.HandlerFunc {
	return probe(serviceName, version, "alive")
}

func probe(serviceName, version, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
		})
	}
}

// ReadinessProbe runs every dependency check concurrently and answers 503
// when any of them fails.
func ReadinessProbe(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		stamp := now.Format(time.RFC3339)

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		results := make([]CheckStatus, len(names))

		var g errgroup.Group
		for i, name := range names {
			check := checks[name]
			g.Go(func() error {
				start := time.Now()
				results[i] = CheckStatus{Status: "healthy", Timestamp: stamp}
				if err := check(); err != nil {
					results[i].Status = "unhealthy"
					results[i].Message = err.Error()
				}
				results[i].Duration = time.Since(start).String()
				return nil
			})
		}
		_ = g.Wait()

		status, code := "ready", http.StatusOK
		byName := make(map[string]CheckStatus, len(names))
		for i, name := range names {
			byName[name] = results[i]
			if results[i].Status != "healthy" {
				status, code = "not ready", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: stamp,
			Uptime:    time.Since(startTime).String(),
			Checks:    byName,
		})
	}
}
