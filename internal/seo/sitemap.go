// Package seo derives search-engine artifacts from resolved content: the
// sitemap and Schema.org JSON-LD objects, plus the text helpers they share.
package seo

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/hierarchy"
	"github.com/recipespark/content-core/internal/slug"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies used by the sitemap.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

// URLEntry is one sitemap <url>.
type URLEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// DataSource supplies the content a sitemap lists.
type DataSource interface {
	Recipes(ctx context.Context) ([]domain.Recipe, error)
	MenuTree(ctx context.Context) ([]domain.MenuNode, error)
}

// SitemapGenerator renders sitemap.xml for a site.
type SitemapGenerator struct {
	SiteURL string
	Now     func() time.Time
	Logger  *slog.Logger
}

// NewSitemapGenerator returns a generator for siteURL using the wall clock.
func NewSitemapGenerator(siteURL string, logger *slog.Logger) *SitemapGenerator {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapGenerator{
		SiteURL: strings.TrimRight(siteURL, "/"),
		Now:     time.Now,
		Logger:  logger,
	}
}

// Entries lists the home page, the recipe index, every recipe and every CMS page in menuTree.
func (g *SitemapGenerator) Entries(recipes []domain.Recipe, menuTree []domain.MenuNode) []URLEntry {
	now := g.Now().UTC()

	entries := make([]URLEntry, 0, 2+len(recipes)+len(menuTree))
	entries = append(entries,
		URLEntry{Loc: g.SiteURL, LastMod: now, ChangeFreq: FreqDaily, Priority: 1.0},
		URLEntry{Loc: g.SiteURL + "/recipes", LastMod: now, ChangeFreq: FreqDaily, Priority: 0.9},
	)

	for i := range recipes {
		r := &recipes[i]
		entries = append(entries, URLEntry{
			Loc:        g.SiteURL + "/recipes/" + slug.UniqueRecipeSlug(r),
			LastMod:    r.ModifiedAt.OrNow(now),
			ChangeFreq: FreqWeekly,
			Priority:   0.8,
		})
	}

	for _, page := range hierarchy.Flatten(menuTree) {
		path, ok := pagePath(&page)
		if !ok {
			continue
		}
		entries = append(entries, URLEntry{
			Loc:        g.SiteURL + path,
			LastMod:    page.ModifiedAt.OrNow(now),
			ChangeFreq: FreqMonthly,
			Priority:   0.6,
		})
	}

	return entries
}

// pagePath returns the sitemap path for a CMS page. The home page and the
// recipe section are excluded since the static entries already cover them.
func pagePath(n *domain.MenuNode) (string, bool) {
	if n.URL == "" || n.URL == "/" || n.URL == "recipe" {
		return "", false
	}
	link := n.Path()
	if strings.HasPrefix(link, "/recipe/") || link == "/recipe" || link == "recipe" {
		return "", false
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return link, true
}

// Generate collects content from src and renders the sitemap. Data failures
// are logged and skipped; the two static entries are always present. Only
// encoding failures are returned.
func (g *SitemapGenerator) Generate(ctx context.Context, src DataSource) ([]byte, error) {
	recipes, err := src.Recipes(ctx)
	if err != nil {
		g.Logger.Warn("sitemap: recipes unavailable, continuing without them", "error", err)
		recipes = nil
	}

	menu, err := src.MenuTree(ctx)
	if err != nil {
		g.Logger.Warn("sitemap: menu unavailable, continuing without pages", "error", err)
		menu = nil
	}

	entries := g.Entries(recipes, menu)
	g.Logger.Info("sitemap generated", "urls", len(entries), "recipes", len(recipes))
	return EncodeSitemap(entries)
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// EncodeSitemap renders entries as a sitemaps.org urlset.
func EncodeSitemap(entries []URLEntry) ([]byte, error) {
	set := xmlURLSet{XMLNS: sitemapNS, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        e.Loc,
			LastMod:    e.LastMod.UTC().Format(time.RFC3339),
			ChangeFreq: e.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// StoreSource reads sitemap content from a snapshot.
type StoreSource struct {
	Store interface {
		Recipes() domain.Envelope[[]domain.Recipe]
		MenuHierarchy() domain.Envelope[[]domain.MenuNode]
	}
}

// Recipes implements DataSource.
func (s StoreSource) Recipes(context.Context) ([]domain.Recipe, error) {
	env := s.Store.Recipes()
	if !env.Success {
		return nil, fmt.Errorf("snapshot has no recipes")
	}
	return env.Data, nil
}

// MenuTree implements DataSource.
func (s StoreSource) MenuTree(context.Context) ([]domain.MenuNode, error) {
	env := s.Store.MenuHierarchy()
	if !env.Success {
		return nil, fmt.Errorf("snapshot has no menu")
	}
	return env.Data, nil
}

// FallbackSource asks Primary first and uses Secondary when Primary fails or
// returns nothing.
type FallbackSource struct {
	Primary   DataSource
	Secondary DataSource
	Logger    *slog.Logger
}

// Recipes implements DataSource.
func (f FallbackSource) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	return fallback(ctx, f, "recipes", DataSource.Recipes)
}

// MenuTree implements DataSource.
func (f FallbackSource) MenuTree(ctx context.Context) ([]domain.MenuNode, error) {
	return fallback(ctx, f, "menu", DataSource.MenuTree)
}

func fallback[T any](ctx context.Context, f FallbackSource, what string, get func(DataSource, context.Context) ([]T, error)) ([]T, error) {
	items, err := get(f.Primary, ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if f.Logger != nil {
		f.Logger.Warn("sitemap: primary source failed, using local fallback", "data", what, "error", err)
	}
	return get(f.Secondary, ctx)
}
