package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipespark/content-core/internal/domain"
	apperrors "github.com/recipespark/content-core/internal/errors"
	"github.com/recipespark/content-core/internal/http/response"
	"github.com/recipespark/content-core/internal/resolve"
	"github.com/recipespark/content-core/internal/service"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getWebsite",
		Method:      http.MethodGet,
		Path:        "/api/v1/website",
		Summary:     "Get website configuration",
		Tags:        []string{"Website"},
	}, s.handleGetWebsite)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMenu",
		Method:      http.MethodGet,
		Path:        "/api/v1/menu",
		Summary:     "Get navigation tree",
		Description: "Returns the CMS menu arranged as a tree of root items",
		Tags:        []string{"Menu"},
	}, s.handleGetMenu)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMenuPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/menu/page",
		Summary:     "Get CMS page by url",
		Tags:        []string{"Menu"},
	}, s.handleGetMenuPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns a page of recipes. The unfiltered first page can be served from the snapshot.",
		Tags:        []string{"Recipes"},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{ref}",
		Summary:     "Get recipe",
		Description: "Looks a recipe up by numeric id or by slug",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)
}

// === DTOs ===

// ContentOutput wraps a resolved envelope for Huma.
type ContentOutput[T any] struct {
	CacheControl string `header:"Cache-Control"`
	Body         response.Content[T]
}

// MenuPageInput selects a CMS page.
type MenuPageInput struct {
	URL string `query:"url" required:"true" minLength:"1" maxLength:"500" doc:"Page url as stored in the CMS"`
}

// ListRecipesInput filters the recipe listing.
type ListRecipesInput struct {
	SearchTerm string `query:"searchTerm" maxLength:"200" doc:"Free-text search"`
	CategoryID int    `query:"categoryId" minimum:"0" doc:"Only recipes in this category"`
	PageNumber int    `query:"pageNumber" minimum:"0" doc:"1-based page, default 1"`
	PageSize   int    `query:"pageSize" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

func (in *ListRecipesInput) params() resolve.ListParams {
	p := resolve.ListParams{
		SearchTerm: in.SearchTerm,
		PageNumber: in.PageNumber,
		PageSize:   in.PageSize,
	}
	if in.CategoryID > 0 {
		id := in.CategoryID
		p.CategoryID = &id
	}
	return p
}

// RecipeRefInput names a recipe by id or slug.
type RecipeRefInput struct {
	Ref string `path:"ref" minLength:"1" maxLength:"200" doc:"Numeric id or slug such as moms-chili-42"`
}

// ListCategoriesInput contains parameters for listing categories.
type ListCategoriesInput struct {
	IncludeInactive bool `query:"includeInactive" doc:"Include inactive categories"`
}

// CategoryIDInput names a category.
type CategoryIDInput struct {
	ID int `path:"id" minimum:"1"`
}

// === Handlers ===

func (s *Server) handleGetWebsite(ctx context.Context, _ *struct{}) (*ContentOutput[domain.WebsiteConfig], error) {
	r, err := s.services.Content.WebsiteConfig(ctx)
	return contentOutput(ctx, s, "website", r, err)
}

func (s *Server) handleGetMenu(ctx context.Context, _ *struct{}) (*ContentOutput[[]domain.MenuNode], error) {
	r, err := s.services.Content.MenuHierarchy(ctx)
	return contentOutput(ctx, s, "menu", r, err)
}

func (s *Server) handleGetMenuPage(ctx context.Context, input *MenuPageInput) (*ContentOutput[domain.MenuNode], error) {
	r, err := s.services.Content.MenuByURL(ctx, input.URL)
	return contentOutput(ctx, s, "menu page", r, err)
}

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ContentOutput[[]domain.Recipe], error) {
	r, err := s.services.Content.Recipes(ctx, input.params())
	return contentOutput(ctx, s, "recipes", r, err)
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeRefInput) (*ContentOutput[domain.Recipe], error) {
	r, err := s.services.Content.RecipeByRef(ctx, input.Ref)
	return contentOutput(ctx, s, "recipe", r, err)
}

func (s *Server) handleListCategories(ctx context.Context, input *ListCategoriesInput) (*ContentOutput[[]domain.Category], error) {
	r, err := s.services.Content.Categories(ctx, input.IncludeInactive)
	return contentOutput(ctx, s, "categories", r, err)
}

func (s *Server) handleGetCategory(ctx context.Context, input *CategoryIDInput) (*ContentOutput[domain.Category], error) {
	r, err := s.services.Content.CategoryByID(ctx, input.ID)
	return contentOutput(ctx, s, "category", r, err)
}

// contentOutput turns a resolve result into a response. An unsuccessful
// envelope is a not-found.
func contentOutput[T any](ctx context.Context, s *Server, what string, r service.Result[T], err error) (*ContentOutput[T], error) {
	if err != nil {
		s.logger.WarnContext(ctx, "content unavailable", "content", what, "error", err)
		return nil, contentError(err)
	}
	if !r.Envelope.Success {
		msg := r.Envelope.Message
		if msg == "" {
			msg = what + " not found"
		}
		return nil, newAPIError(apperrors.CodeNotFound, msg)
	}

	cacheControl := CacheFiveMinutes
	if r.Stale {
		cacheControl = CacheNoStore
	}
	return &ContentOutput[T]{
		CacheControl: cacheControl,
		Body:         response.NewContent(r.Envelope, string(r.Source), r.Stale),
	}, nil
}
