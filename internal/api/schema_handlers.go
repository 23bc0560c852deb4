package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/http/response"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/service"
)

func (s *Server) registerSchemaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipeSchema",
		Method:      http.MethodGet,
		Path:        "/api/v1/schema/recipes/{ref}",
		Summary:     "Recipe structured data",
		Description: "Returns the Schema.org Recipe and BreadcrumbList for a recipe",
		Tags:        []string{"Schema"},
	}, s.handleRecipeSchema)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrganizationSchema",
		Method:      http.MethodGet,
		Path:        "/api/v1/schema/organization",
		Summary:     "Organization structured data",
		Tags:        []string{"Schema"},
	}, s.handleOrganizationSchema)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWebSiteSchema",
		Method:      http.MethodGet,
		Path:        "/api/v1/schema/website",
		Summary:     "WebSite structured data",
		Tags:        []string{"Schema"},
	}, s.handleWebSiteSchema)
}

// RecipeSchema pairs a recipe's JSON-LD objects.
type RecipeSchema struct {
	Recipe      seo.Schema `json:"recipe"`
	Breadcrumbs seo.Schema `json:"breadcrumbs"`
}

// RecipeSchemaOutput wraps recipe structured data for Huma.
type RecipeSchemaOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         response.Content[RecipeSchema]
}

// SchemaOutput wraps a single JSON-LD object for Huma.
type SchemaOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         response.Content[seo.Schema]
}

func (s *Server) handleRecipeSchema(ctx context.Context, input *RecipeRefInput) (*RecipeSchemaOutput, error) {
	r, err := s.services.Content.RecipeByRef(ctx, input.Ref)
	out, err := contentOutput(ctx, s, "recipe", r, err)
	if err != nil {
		return nil, err
	}

	recipe := &out.Body.Data
	page := RecipeSchema{
		Recipe:      s.services.Schema.Recipe(recipe),
		Breadcrumbs: s.services.Schema.RecipeBreadcrumbs(recipe),
	}

	return &RecipeSchemaOutput{
		CacheControl: out.CacheControl,
		Body: response.Content[RecipeSchema]{
			Success: true,
			Data:    page,
			Source:  out.Body.Source,
			Stale:   out.Body.Stale,
		},
	}, nil
}

// handleOrganizationSchema builds the Organization from the website
// configuration, or from the site defaults when no configuration is available.
func (s *Server) handleOrganizationSchema(ctx context.Context, _ *struct{}) (*SchemaOutput, error) {
	r, err := s.services.Content.WebsiteConfig(ctx)

	var cfg *domain.WebsiteConfig
	source, stale := string(r.Source), r.Stale
	if err == nil && r.Envelope.Success {
		cfg = &r.Envelope.Data
	} else {
		source, stale = string(service.SourceSnapshot), true
	}

	return schemaOutput(s.services.Schema.Organization(cfg), source, stale), nil
}

func (s *Server) handleWebSiteSchema(_ context.Context, _ *struct{}) (*SchemaOutput, error) {
	return schemaOutput(s.services.Schema.WebSite(), string(service.SourceSnapshot), false), nil
}

func schemaOutput(schema seo.Schema, source string, stale bool) *SchemaOutput {
	cacheControl := CacheOneHour
	if stale {
		cacheControl = CacheNoStore
	}
	return &SchemaOutput{
		CacheControl: cacheControl,
		Body:         response.NewContent(domain.OK(schema), source, stale),
	}
}
