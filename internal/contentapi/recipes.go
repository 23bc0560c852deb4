package contentapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/recipespark/content-core/internal/domain"
)

// RecipeQuery filters the recipe listing. Zero fields are omitted.
type RecipeQuery struct {
	PageNumber int
	PageSize   int
	CategoryID *int
	SearchTerm string
}

func (q RecipeQuery) values() url.Values {
	v := url.Values{}
	if q.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.CategoryID != nil {
		v.Set("categoryId", strconv.Itoa(*q.CategoryID))
	}
	if s := strings.TrimSpace(q.SearchTerm); s != "" {
		v.Set("searchTerm", s)
	}
	return v
}

var errNotList = errors.New("data is not a list")

// Recipes lists one page of recipes.
func (c *Client) Recipes(ctx context.Context, q RecipeQuery) (domain.Envelope[[]domain.Recipe], error) {
	return getEnvelope(ctx, c, "recipes", "", "/recipespark/recipes", q.values(),
		func(env *domain.Envelope[[]domain.Recipe]) error {
			if env.Data == nil {
				return errNotList
			}
			return c.validator.Var(env.Data, "dive")
		})
}

// Recipe fetches one recipe by id.
func (c *Client) Recipe(ctx context.Context, id int) (domain.Envelope[domain.Recipe], error) {
	ref := strconv.Itoa(id)
	return getEnvelope(ctx, c, "recipe", ref, "/recipespark/recipes/"+ref, nil,
		func(env *domain.Envelope[domain.Recipe]) error {
			return c.validator.Validate(env.Data)
		})
}

// Categories lists recipe categories.
func (c *Client) Categories(ctx context.Context, includeInactive bool) (domain.Envelope[[]domain.Category], error) {
	q := url.Values{}
	q.Set("includeInactive", strconv.FormatBool(includeInactive))
	return getEnvelope(ctx, c, "categories", "", "/recipespark/categories", q,
		func(env *domain.Envelope[[]domain.Category]) error {
			if env.Data == nil {
				return errNotList
			}
			return nil
		})
}

// Category fetches one category by id.
func (c *Client) Category(ctx context.Context, id int) (domain.Envelope[domain.Category], error) {
	ref := strconv.Itoa(id)
	return getEnvelope(ctx, c, "category", ref, "/recipespark/categories/"+ref, nil,
		func(env *domain.Envelope[domain.Category]) error {
			if env.Data.ID == 0 {
				return errors.New("category has no id")
			}
			return nil
		})
}
