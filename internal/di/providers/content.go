package providers

import (
	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/config"
	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/resolve"
	"github.com/recipespark/content-core/internal/service"
	"github.com/recipespark/content-core/internal/snapshot"
	"github.com/recipespark/content-core/internal/store"
)

// ProvideSnapshot loads the imported snapshot under the project root.
// Missing files leave the matching data set empty.
func ProvideSnapshot(i do.Injector) (*snapshot.Holder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	paths := snapshot.ImportPaths(cfg.Paths.Root)
	st, err := snapshot.Load(paths, logger.Component(log.Logger, "snapshot"))
	if err != nil {
		return nil, err
	}

	recipes := st.Recipes()
	log.Info("Snapshot loaded",
		"recipes", len(recipes.Data),
		"recipes_ok", recipes.Success,
		"file", paths.Recipes,
	)

	return snapshot.NewHolder(st), nil
}

// ContentClientHandle wraps the content API client with shutdown capability.
type ContentClientHandle struct {
	*contentapi.Client
}

// Shutdown implements do.Shutdownable.
func (h *ContentClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideContentClient provides the live content API client.
func ProvideContentClient(i do.Injector) (*ContentClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := contentapi.New(contentapi.Options{
		BaseURL:    cfg.API.BaseURL,
		WebsiteID:  cfg.API.WebsiteID,
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
		RPS:        cfg.API.RPS,
		Burst:      cfg.API.Burst,
		UserAgent:  "recipespark-content-core/" + cfg.App.Version,
	}, logger.Component(log.Logger, "contentapi"))

	return &ContentClientHandle{Client: client}, nil
}

// CacheStoreHandle wraps the response cache with shutdown capability.
// Store is nil when caching is disabled.
type CacheStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *CacheStoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvideCacheStore provides the Badger response cache.
func ProvideCacheStore(i do.Injector) (*CacheStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Cache.Enabled {
		log.Info("Response cache disabled by configuration")
		return &CacheStoreHandle{}, nil
	}

	st, err := store.Open(store.Options{
		Path:      cfg.Paths.Cache,
		InMemory:  cfg.Cache.InMemory,
		TTL:       cfg.Cache.TTL,
		Retention: cfg.Cache.Retention,
	}, logger.Component(log.Logger, "cache"))
	if err != nil {
		return nil, err
	}

	log.Info("Response cache opened",
		"path", cfg.Paths.Cache,
		"in_memory", cfg.Cache.InMemory,
		"ttl", cfg.Cache.TTL,
	)

	return &CacheStoreHandle{Store: st}, nil
}

// ProvideContentService provides the read-through content service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	holder := do.MustInvoke[*snapshot.Holder](i)
	client := do.MustInvoke[*ContentClientHandle](i)
	cacheHandle := do.MustInvoke[*CacheStoreHandle](i)

	// Keep a disabled cache a nil interface, not a typed nil.
	var cache service.Cache
	if cacheHandle.Store != nil {
		cache = cacheHandle.Store
	}

	resolver := resolve.NewDynamic(
		func() resolve.SnapshotSource { return holder.Current() },
		client.Client,
	)

	return service.NewContentService(resolver, cache, service.Options{
		LiveTimeout: cfg.Server.LiveTimeout,
	}, logger.Component(log.Logger, "content"), m), nil
}
