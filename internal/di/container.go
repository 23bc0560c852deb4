// Package di wires the serve command's components with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/di/providers"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/service"
	"github.com/recipespark/content-core/internal/snapshot"
)

// NewContainer creates and configures the DI container with all providers.
// cfg is the configuration the command already loaded.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Content sources
	do.Provide(injector, providers.ProvideSnapshot)
	do.Provide(injector, providers.ProvideContentClient)
	do.Provide(injector, providers.ProvideCacheStore)
	do.Provide(injector, providers.ProvideContentService)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Workers
	do.Provide(injector, providers.ProvideEventManager)
	do.Provide(injector, providers.ProvideSnapshotWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*metrics.Metrics](injector)
	if _, err := do.Invoke[*snapshot.Holder](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.ContentClientHandle](injector)
	if _, err := do.Invoke[*providers.CacheStoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.ContentService](injector)
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}

	// Workers
	_ = do.MustInvoke[*providers.EventManagerHandle](injector)
	if _, err := do.Invoke[*providers.SnapshotWatcherHandle](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
