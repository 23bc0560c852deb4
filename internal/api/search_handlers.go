package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/http/response"
	"github.com/recipespark/content-core/internal/search"
	"github.com/recipespark/content-core/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search recipes",
		Description: "Full-text search over the snapshot recipes. Works while the content API is down.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search parameters.
type SearchInput struct {
	Query      string   `query:"q" maxLength:"200" doc:"Search text; empty lists everything"`
	CategoryID int      `query:"categoryId" minimum:"0" doc:"Only recipes in this category"`
	Tags       []string `query:"tags" doc:"Recipes must carry every tag"`
	Limit      int      `query:"limit" minimum:"0" maximum:"100" doc:"Hits per page, default 20"`
	Offset     int      `query:"offset" minimum:"0"`
	Highlight  bool     `query:"highlight" doc:"Mark matched terms in recipe names"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body response.Content[search.Result]
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search index not configured")
	}

	params := search.Params{
		Query:     input.Query,
		Tags:      input.Tags,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: input.Highlight,
	}
	if input.CategoryID > 0 {
		id := input.CategoryID
		params.CategoryID = &id
	}

	res, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{
		Body: response.NewContent(domain.OK(*res), string(service.SourceSnapshot), false),
	}, nil
}
