package api

// Cache-Control header values.
const (
	CacheFiveMinutes = "public, max-age=300"
	CacheOneHour     = "public, max-age=3600"
	CacheNoStore     = "no-cache"
)

// Sitemap paging over the content service.
const (
	sitemapPageSize = 100
	sitemapMaxPages = 20
)
