package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/http/response"
	"github.com/recipespark/content-core/internal/resolve"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/service"
)

// handleSitemap renders sitemap.xml from resolved content, falling back to
// the current snapshot per data set.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	src := seo.FallbackSource{
		Primary:   contentSource{content: s.services.Content},
		Secondary: seo.StoreSource{Store: s.services.Snapshot.Current()},
		Logger:    s.logger,
	}

	body, err := s.services.Sitemap.Generate(r.Context(), src)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", CacheOneHour)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write sitemap", "error", err)
	}
}

// contentSource feeds the sitemap from the content service.
type contentSource struct {
	content *service.ContentService
}

// Recipes pages through the listing until the API reports no next page.
// A failure after the first page keeps what was read.
func (c contentSource) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	var all []domain.Recipe
	for page := 1; page <= sitemapMaxPages; page++ {
		res, err := c.content.Recipes(ctx, resolve.ListParams{PageNumber: page, PageSize: sitemapPageSize})
		if err == nil && !res.Envelope.Success {
			err = errors.New("recipes unavailable: " + res.Envelope.Message)
		}
		if err != nil {
			if page == 1 {
				return nil, err
			}
			break
		}

		all = append(all, res.Envelope.Data...)
		if p := res.Envelope.Pagination; p == nil || !p.HasNext {
			break
		}
	}
	return all, nil
}

// MenuTree implements seo.DataSource.
func (c contentSource) MenuTree(ctx context.Context) ([]domain.MenuNode, error) {
	res, err := c.content.MenuHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Envelope.Success {
		return nil, errors.New("menu unavailable")
	}
	return res.Envelope.Data, nil
}
