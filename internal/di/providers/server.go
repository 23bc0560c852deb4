package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/api"
	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/service"
	"github.com/recipespark/content-core/internal/snapshot"
)

// HTTPServerHandle wraps the HTTP server with shutdown capability.
type HTTPServerHandle struct {
	*http.Server
	api    *api.Server
	logger *logger.Logger
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	h.logger.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cache := do.MustInvoke[*CacheStoreHandle](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	events := do.MustInvoke[*EventManagerHandle](i)

	services := &api.Services{
		Content:  do.MustInvoke[*service.ContentService](i),
		Snapshot: do.MustInvoke[*snapshot.Holder](i),
		Cache:    cache.Store,
		Search:   index.Index,
		Schema:   seo.NewSchemaGenerator(cfg.Site.URL, cfg.Site.Name),
		Sitemap:  seo.NewSitemapGenerator(cfg.Site.URL, logger.Component(log.Logger, "sitemap")),
		Metrics:  do.MustInvoke[*metrics.Metrics](i),
		Events:   events.Manager,
	}

	apiServer := api.NewServer(services, api.Options{
		Title:          cfg.Site.Name + " Content API",
		Version:        cfg.App.Version,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, log.Logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Event streams never go idle, so end them before Shutdown waits on connections.
	httpServer.RegisterOnShutdown(func() { _ = events.Shutdown() })

	go func() {
		log.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: httpServer, api: apiServer, logger: log}, nil
}
