package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Version    string                     `json:"version"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"snapshot": s.checkSnapshot(),
		"cache":    s.checkCache(ctx),
		"search":   s.checkSearchIndex(),
	}
	if s.services.Events != nil {
		components["events"] = ComponentHealth{
			Status:  statusHealthy,
			Message: strconv.Itoa(s.services.Events.ClientCount()) + " clients",
		}
	}

	overall := statusHealthy
	for _, c := range components {
		switch {
		case c.Status == statusUnhealthy:
			overall = statusUnhealthy
		case c.Status == statusDegraded && overall == statusHealthy:
			overall = statusDegraded
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Version:    s.version,
			Components: components,
		},
	}, nil
}

// checkSnapshot reports whether a snapshot with recipes is loaded.
func (s *Server) checkSnapshot() ComponentHealth {
	if s.services.Snapshot == nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "snapshot not loaded"}
	}

	recipes := s.services.Snapshot.Current().Recipes()
	if !recipes.Success {
		return ComponentHealth{Status: statusDegraded, Message: "snapshot has no recipes"}
	}
	return ComponentHealth{
		Status:  statusHealthy,
		Message: strconv.Itoa(len(recipes.Data)) + " recipes",
	}
}

// checkCache verifies BadgerDB is accessible.
func (s *Server) checkCache(ctx context.Context) ComponentHealth {
	if s.services.Cache == nil {
		return ComponentHealth{Status: statusHealthy, Message: "disabled"}
	}

	start := time.Now()
	err := s.services.Cache.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "cache read failed",
		}
	}
	return ComponentHealth{Status: statusHealthy, Latency: latency.String()}
}

// checkSearchIndex verifies the Bleve index is accessible.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services.Search == nil {
		return ComponentHealth{Status: statusDegraded, Message: "search index not configured"}
	}

	start := time.Now()
	docCount, err := s.services.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	// Empty while the snapshot has no recipes or a rebuild is running.
	if docCount == 0 {
		return ComponentHealth{
			Status:  statusDegraded,
			Latency: latency.String(),
			Message: "search index empty",
		}
	}

	return ComponentHealth{
		Status:  statusHealthy,
		Latency: latency.String(),
		Message: strconv.FormatUint(docCount, 10) + " documents",
	}
}
