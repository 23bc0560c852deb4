// Package resolve decides, per query, what the snapshot may contribute and
// what the live fetch should be.
//
// Fallback providers are synchronous, read only the snapshot and return
// copies. Live descriptors are handed to the caching runtime, which owns
// timeouts and staleness.
package resolve

import (
	"context"
	"strconv"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/hierarchy"
	"github.com/recipespark/content-core/internal/slug"
)

// SnapshotSource is the read side of the build-time snapshot.
type SnapshotSource interface {
	WebsiteConfig() (*domain.Envelope[domain.WebsiteConfig], bool)
	MenuHierarchy() domain.Envelope[[]domain.MenuNode]
	MenuByURL(url string) (domain.Envelope[domain.MenuNode], bool)
	Recipes() domain.Envelope[[]domain.Recipe]
	RecipeByID(id int) (domain.Envelope[domain.Recipe], bool)
	RecipeBySlug(slug string) (domain.Envelope[domain.Recipe], bool)
	Categories(includeInactive bool) domain.Envelope[[]domain.Category]
	CategoryByID(id int) (domain.Envelope[domain.Category], bool)
}

// LiveSource is the remote content API.
type LiveSource interface {
	Recipes(ctx context.Context, q contentapi.RecipeQuery) (domain.Envelope[[]domain.Recipe], error)
	Recipe(ctx context.Context, id int) (domain.Envelope[domain.Recipe], error)
	Categories(ctx context.Context, includeInactive bool) (domain.Envelope[[]domain.Category], error)
	Category(ctx context.Context, id int) (domain.Envelope[domain.Category], error)
	Website(ctx context.Context) (domain.Envelope[domain.WebsiteConfig], error)
	MenuHierarchy(ctx context.Context) (domain.Envelope[[]domain.MenuNode], error)
	FindMenuByURL(ctx context.Context, url string) (domain.Envelope[domain.MenuNode], error)
}

// Resolver builds queries against a snapshot and a live source.
// The snapshot func is called per query so a reloaded snapshot takes effect
// without rebuilding the resolver.
type Resolver struct {
	snapshot func() SnapshotSource
	live     LiveSource
}

// New returns a resolver over a fixed snapshot.
func New(snap SnapshotSource, live LiveSource) *Resolver {
	return &Resolver{snapshot: func() SnapshotSource { return snap }, live: live}
}

// NewDynamic returns a resolver that reads the current snapshot on each call.
func NewDynamic(current func() SnapshotSource, live LiveSource) *Resolver {
	return &Resolver{snapshot: current, live: live}
}

// RecipesFallback returns snapshot recipes truncated to the page size, or nil
// when the policy forbids the snapshot for p or the snapshot has none.
func (r *Resolver) RecipesFallback(p ListParams) *domain.Envelope[[]domain.Recipe] {
	if !ShouldUseStaticFallback(p) {
		return nil
	}
	env := r.snapshot().Recipes()
	if !env.Success {
		return nil
	}
	size := p.Normalize().PageSize
	if len(env.Data) > size {
		env.Data = env.Data[:size]
	}
	return &env
}

// Recipes describes a recipe listing.
func (r *Resolver) Recipes(p ListParams) Query[[]domain.Recipe] {
	return Query[[]domain.Recipe]{
		Key: p.key(),
		Fetch: func(ctx context.Context) (domain.Envelope[[]domain.Recipe], error) {
			return r.live.Recipes(ctx, p.Query())
		},
		Fallback: r.RecipesFallback(p),
	}
}

// RecipeByIDFallback returns the snapshot recipe with id.
func (r *Resolver) RecipeByIDFallback(id int) *domain.Envelope[domain.Recipe] {
	if env, ok := r.snapshot().RecipeByID(id); ok {
		return &env
	}
	return nil
}

// RecipeByID describes a recipe lookup by id.
func (r *Resolver) RecipeByID(id int) Query[domain.Recipe] {
	return Query[domain.Recipe]{
		Key: []string{"recipe", "id", strconv.Itoa(id)},
		Fetch: func(ctx context.Context) (domain.Envelope[domain.Recipe], error) {
			return r.live.Recipe(ctx, id)
		},
		Fallback: r.RecipeByIDFallback(id),
	}
}

// RecipeBySlugFallback returns the snapshot recipe matching s.
func (r *Resolver) RecipeBySlugFallback(s string) *domain.Envelope[domain.Recipe] {
	if env, ok := r.snapshot().RecipeBySlug(s); ok {
		return &env
	}
	return nil
}

// RecipeBySlug describes a recipe lookup by slug. The API has no slug
// endpoint, so the live fetch goes by id: the id of the snapshot recipe the
// slug names, else the id embedded in the slug. A slug that yields neither
// resolves to a not-found envelope without a network call.
func (r *Resolver) RecipeBySlug(s string) Query[domain.Recipe] {
	fallback := r.RecipeBySlugFallback(s)
	return Query[domain.Recipe]{
		Key: []string{"recipe", "slug", s},
		Fetch: func(ctx context.Context) (domain.Envelope[domain.Recipe], error) {
			id, ok := liveRecipeID(s, fallback)
			if !ok {
				return domain.Failed[domain.Recipe]("recipe not found"), nil
			}
			return r.live.Recipe(ctx, id)
		},
		Fallback: fallback,
	}
}

// liveRecipeID picks the id to fetch for slug s. A snapshot match wins over
// digits in the slug, which may belong to an explicit slug like "top-10".
func liveRecipeID(s string, fallback *domain.Envelope[domain.Recipe]) (int, bool) {
	if fallback != nil && fallback.Data.ID > 0 {
		return fallback.Data.ID, true
	}
	return slug.ExtractID(s)
}

// RecipeByRef routes an all-digit ref to the id lookup and anything else to the slug lookup.
func (r *Resolver) RecipeByRef(ref string) Query[domain.Recipe] {
	if parsed := slug.ParseRef(ref); parsed.IsID {
		return r.RecipeByID(parsed.ID)
	}
	return r.RecipeBySlug(ref)
}

// CategoriesFallback returns the categories derived from snapshot recipes.
func (r *Resolver) CategoriesFallback(includeInactive bool) *domain.Envelope[[]domain.Category] {
	env := r.snapshot().Categories(includeInactive)
	if len(env.Data) == 0 {
		return nil
	}
	return &env
}

// Categories describes the category listing.
func (r *Resolver) Categories(includeInactive bool) Query[[]domain.Category] {
	return Query[[]domain.Category]{
		Key: []string{"categories", "inactive=" + strconv.FormatBool(includeInactive)},
		Fetch: func(ctx context.Context) (domain.Envelope[[]domain.Category], error) {
			return r.live.Categories(ctx, includeInactive)
		},
		Fallback: r.CategoriesFallback(includeInactive),
	}
}

// CategoryByIDFallback returns the snapshot category with id.
func (r *Resolver) CategoryByIDFallback(id int) *domain.Envelope[domain.Category] {
	if env, ok := r.snapshot().CategoryByID(id); ok {
		return &env
	}
	return nil
}

// CategoryByID describes a category lookup.
func (r *Resolver) CategoryByID(id int) Query[domain.Category] {
	return Query[domain.Category]{
		Key: []string{"category", strconv.Itoa(id)},
		Fetch: func(ctx context.Context) (domain.Envelope[domain.Category], error) {
			return r.live.Category(ctx, id)
		},
		Fallback: r.CategoryByIDFallback(id),
	}
}

// MenuHierarchy describes the navigation tree. The live list is arranged
// into a tree the same way the snapshot is.
func (r *Resolver) MenuHierarchy() Query[[]domain.MenuNode] {
	var fallback *domain.Envelope[[]domain.MenuNode]
	if env := r.snapshot().MenuHierarchy(); env.Success {
		fallback = &env
	}
	return Query[[]domain.MenuNode]{
		Key: []string{"menu", "hierarchy"},
		Fetch: func(ctx context.Context) (domain.Envelope[[]domain.MenuNode], error) {
			env, err := r.live.MenuHierarchy(ctx)
			if err != nil {
				return env, err
			}
			return domain.WithData(env, hierarchy.Build(env.Data)), nil
		},
		Fallback: fallback,
	}
}

// MenuByURL describes a CMS page lookup by url.
func (r *Resolver) MenuByURL(url string) Query[domain.MenuNode] {
	var fallback *domain.Envelope[domain.MenuNode]
	if env, ok := r.snapshot().MenuByURL(url); ok {
		fallback = &env
	}
	return Query[domain.MenuNode]{
		Key: []string{"menu", "url", url},
		Fetch: func(ctx context.Context) (domain.Envelope[domain.MenuNode], error) {
			return r.live.FindMenuByURL(ctx, url)
		},
		Fallback: fallback,
	}
}

// WebsiteConfig describes the site settings read.
func (r *Resolver) WebsiteConfig() Query[domain.WebsiteConfig] {
	fallback, _ := r.snapshot().WebsiteConfig()
	return Query[domain.WebsiteConfig]{
		Key: []string{"website"},
		Fetch: func(ctx context.Context) (domain.Envelope[domain.WebsiteConfig], error) {
			return r.live.Website(ctx)
		},
		Fallback: fallback,
	}
}
