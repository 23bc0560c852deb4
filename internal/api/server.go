// Package api serves resolved content over HTTP: the JSON read API on huma,
// plus the sitemap, event stream and Prometheus endpoints as plain chi
// handlers.
package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/ratelimit"
	"github.com/recipespark/content-core/internal/sse"
)

// Options configures the HTTP surface.
type Options struct {
	Title          string
	Version        string
	CORSOrigins    []string
	RateLimitRPS   float64 // per client IP, 0 disables
	RateLimitBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	version  string
	logger   *slog.Logger
}

// jsonFormat encodes bodies with json/v2 so unknown-field passthrough and
// omitzero behave the same as in the snapshot files.
var jsonFormat = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		return json.MarshalWrite(w, v)
	},
	Unmarshal: func(data []byte, v any) error {
		return json.Unmarshal(data, v)
	},
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Title == "" {
		opts.Title = "RecipeSpark Content API"
	}
	if opts.Version == "" {
		opts.Version = "0.0.0"
	}

	s := &Server{
		services: services,
		router:   chi.NewRouter(),
		version:  opts.Version,
		logger:   logger,
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = int(opts.RateLimitRPS) + 1
		}
		s.limiter = ratelimit.New(opts.RateLimitRPS, burst)
	}

	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig(opts.Title, opts.Version)
	humaConfig.Formats = map[string]huma.Format{
		"application/json": jsonFormat,
		"json":             jsonFormat,
	}
	// Drop the $schema link so bodies keep the content envelope shape.
	humaConfig.CreateHooks = nil

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, e.g. to dump the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases the rate limiter.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger, s.services.Metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerContentRoutes()
	s.registerSearchRoutes()
	s.registerSchemaRoutes()

	s.router.Get("/sitemap.xml", s.handleSitemap)
	s.router.Handle("/metrics", s.services.Metrics.Handler())

	if s.services.Events != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.services.Events, logger.Component(s.logger, "sse")).ServeHTTP)
	}
}
