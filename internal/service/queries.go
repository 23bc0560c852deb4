package service

import (
	"context"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/resolve"
)

// Recipes resolves a recipe listing.
func (s *ContentService) Recipes(ctx context.Context, p resolve.ListParams) (Result[[]domain.Recipe], error) {
	return Resolve(ctx, s, s.resolver.Recipes(p))
}

// RecipeByRef resolves a recipe by id or slug.
func (s *ContentService) RecipeByRef(ctx context.Context, ref string) (Result[domain.Recipe], error) {
	return Resolve(ctx, s, s.resolver.RecipeByRef(ref))
}

// Categories resolves the category listing.
func (s *ContentService) Categories(ctx context.Context, includeInactive bool) (Result[[]domain.Category], error) {
	return Resolve(ctx, s, s.resolver.Categories(includeInactive))
}

// CategoryByID resolves one category.
func (s *ContentService) CategoryByID(ctx context.Context, id int) (Result[domain.Category], error) {
	return Resolve(ctx, s, s.resolver.CategoryByID(id))
}

// MenuHierarchy resolves the navigation tree.
func (s *ContentService) MenuHierarchy(ctx context.Context) (Result[[]domain.MenuNode], error) {
	return Resolve(ctx, s, s.resolver.MenuHierarchy())
}

// MenuByURL resolves a CMS page by url.
func (s *ContentService) MenuByURL(ctx context.Context, url string) (Result[domain.MenuNode], error) {
	return Resolve(ctx, s, s.resolver.MenuByURL(url))
}

// WebsiteConfig resolves the site settings.
func (s *ContentService) WebsiteConfig(ctx context.Context) (Result[domain.WebsiteConfig], error) {
	return Resolve(ctx, s, s.resolver.WebsiteConfig())
}
