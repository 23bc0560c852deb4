package api

import (
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/search"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/service"
	"github.com/recipespark/content-core/internal/snapshot"
	"github.com/recipespark/content-core/internal/sse"
	"github.com/recipespark/content-core/internal/store"
)

// Services groups everything the handlers read from.
type Services struct {
	Content  *service.ContentService
	Snapshot *snapshot.Holder
	Cache    *store.Store  // nil when the response cache is disabled
	Search   *search.Index // nil disables /api/v1/search
	Schema   *seo.SchemaGenerator
	Sitemap  *seo.SitemapGenerator
	Metrics  *metrics.Metrics
	Events   *sse.Manager // nil disables /api/v1/events
}
