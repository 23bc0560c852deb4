// Package fetcher snapshots the content API into local JSON files at build time.
//
// Each resource is fetched independently. A resource that cannot be fetched
// keeps whatever local copy exists; the build only fails when a resource has
// neither live data nor a local file.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/snapshot"
)

const (
	// RecipePageSize is the page size used when paging through recipes.
	RecipePageSize = 100
	// MaxRecipePages bounds the pagination loop.
	MaxRecipePages = 20
)

// ErrNoFallback marks a resource with neither live data nor a local file.
var ErrNoFallback = errors.New("fetcher: no live data and no local fallback")

// RecipeAPI is the part of the content API client the fetcher uses.
type RecipeAPI interface {
	Recipes(ctx context.Context, q contentapi.RecipeQuery) (domain.Envelope[[]domain.Recipe], error)
	Website(ctx context.Context) (domain.Envelope[domain.WebsiteConfig], error)
	MenuHierarchy(ctx context.Context) (domain.Envelope[[]domain.MenuNode], error)
}

// Fetcher writes the API cache files and their import copies.
type Fetcher struct {
	Client  RecipeAPI
	Paths   snapshot.Paths // import copies read by the site
	Cache   snapshot.Paths // verbatim API cache
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// New returns a fetcher writing under root.
func New(client RecipeAPI, root string, logger *slog.Logger, m *metrics.Metrics) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Client:  client,
		Paths:   snapshot.ImportPaths(root),
		Cache:   snapshot.CachePaths(root),
		Logger:  logger,
		Metrics: m,
	}
}

// RecipeResult is the outcome of paging through all recipes.
type RecipeResult struct {
	Envelope domain.Envelope[[]domain.Recipe]
	Pages    int
	Partial  bool
	Err      error // error that cut a partial fetch short
}

// FetchAllRecipes pages through the recipe list until pagination reports no
// next page or MaxRecipePages is reached. A failure on the first page is
// returned. A later failure keeps what was fetched and marks the result partial.
func (f *Fetcher) FetchAllRecipes(ctx context.Context) (RecipeResult, error) {
	var (
		all    []domain.Recipe
		result RecipeResult
	)

	for page := 1; page <= MaxRecipePages; page++ {
		f.Logger.Debug("fetching recipes page", "page", page)

		env, err := f.Client.Recipes(ctx, contentapi.RecipeQuery{PageNumber: page, PageSize: RecipePageSize})
		if err != nil {
			if page == 1 {
				return RecipeResult{}, fmt.Errorf("fetch recipes page 1: %w", err)
			}
			result.Partial = true
			result.Err = err
			f.Logger.Warn("recipe pagination stopped early, keeping fetched pages",
				"page", page,
				"fetched", len(all),
				"error", err,
			)
			f.Metrics.ObservePartial()
			break
		}

		all = append(all, env.Data...)
		result.Pages = page

		if env.Pagination == nil || !env.Pagination.HasNext {
			break
		}
	}

	if all == nil {
		all = []domain.Recipe{}
	}
	result.Envelope = domain.Envelope[[]domain.Recipe]{
		Success: true,
		Data:    all,
		Message: fmt.Sprintf("Fetched %d recipes", len(all)),
	}
	return result, nil
}
