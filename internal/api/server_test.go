package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	apperrors "github.com/recipespark/content-core/internal/errors"
	"github.com/recipespark/content-core/internal/http/response"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/resolve"
	"github.com/recipespark/content-core/internal/search"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/service"
	"github.com/recipespark/content-core/internal/snapshot"
	"github.com/recipespark/content-core/internal/store"
)

// fakeLive stands in for the content API. While down every call fails as
// an upstream outage.
type fakeLive struct {
	down    atomic.Bool
	calls   atomic.Int32
	recipes []domain.Recipe
}

func (f *fakeLive) fail() error {
	return apperrors.Upstream("content api down")
}

func (f *fakeLive) Recipes(context.Context, contentapi.RecipeQuery) (domain.Envelope[[]domain.Recipe], error) {
	f.calls.Add(1)
	if f.down.Load() {
		return domain.Envelope[[]domain.Recipe]{}, f.fail()
	}
	env := domain.OK(domain.CloneRecipes(f.recipes))
	env.Pagination = &domain.Pagination{CurrentPage: 1, TotalPages: 1}
	return env, nil
}

func (f *fakeLive) Recipe(_ context.Context, id int) (domain.Envelope[domain.Recipe], error) {
	f.calls.Add(1)
	if f.down.Load() {
		return domain.Envelope[domain.Recipe]{}, f.fail()
	}
	for _, r := range f.recipes {
		if r.ID == id {
			return domain.OK(r.Clone()), nil
		}
	}
	return domain.Envelope[domain.Recipe]{}, apperrors.NotFoundf("recipe %d", id)
}

func (f *fakeLive) Categories(context.Context, bool) (domain.Envelope[[]domain.Category], error) {
	return domain.Envelope[[]domain.Category]{}, f.fail()
}

func (f *fakeLive) Category(context.Context, int) (domain.Envelope[domain.Category], error) {
	return domain.Envelope[domain.Category]{}, f.fail()
}

func (f *fakeLive) Website(context.Context) (domain.Envelope[domain.WebsiteConfig], error) {
	return domain.Envelope[domain.WebsiteConfig]{}, f.fail()
}

func (f *fakeLive) MenuHierarchy(context.Context) (domain.Envelope[[]domain.MenuNode], error) {
	return domain.Envelope[[]domain.MenuNode]{}, f.fail()
}

func (f *fakeLive) FindMenuByURL(context.Context, string) (domain.Envelope[domain.MenuNode], error) {
	return domain.Envelope[domain.MenuNode]{}, f.fail()
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func testRecipes() []domain.Recipe {
	dinner := &domain.Category{ID: 3, Name: "Dinner"}
	dessert := &domain.Category{ID: 4, Name: "Dessert"}
	return []domain.Recipe{
		{
			ID:           42,
			Name:         "Mom's Chili",
			Description:  "A **hearty** bowl",
			Ingredients:  "- beans\n- beef\n- chili powder",
			Instructions: "1. Brown the beef\n2. Simmer",
			Servings:     intPtr(4),
			AuthorNM:     "Mom",
			Tags:         []string{"Comfort"},
			Category:     dinner,
		},
		{
			ID:          7,
			Name:        "Apple Pie",
			Description: "Flaky crust",
			Ingredients: "- apples\n- flour",
			Category:    dessert,
		},
	}
}

func testSnapshot() *snapshot.Store {
	website := domain.OK(domain.WebsiteConfig{ID: 2, SiteName: "Example Kitchen", Description: "Family recipes"})
	menu := domain.OK([]domain.MenuNode{
		{ID: 1, Title: "About", URL: "about", DisplayInNavigation: boolPtr(true)},
		{ID: 2, Title: "Team", URL: "team", ParentID: intPtr(1)},
	})
	return snapshot.New(&website, menu, domain.OK(testRecipes()))
}

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	live    *fakeLive
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	holder := snapshot.NewHolder(testSnapshot())
	live := &fakeLive{recipes: testRecipes()}
	live.down.Store(true)

	cache, err := store.Open(store.Options{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	idx, err := search.New(logger)
	require.NoError(t, err)
	require.NoError(t, idx.IndexRecipes(holder.Current().Recipes().Data))
	t.Cleanup(func() { _ = idx.Close() })

	m := metrics.New()
	resolver := resolve.NewDynamic(func() resolve.SnapshotSource { return holder.Current() }, live)
	content := service.NewContentService(resolver, cache, service.Options{LiveTimeout: time.Second}, logger, m)

	if opts.Version == "" {
		opts.Version = "1.2.3"
	}
	srv := NewServer(&Services{
		Content:  content,
		Snapshot: holder,
		Cache:    cache,
		Search:   idx,
		Schema:   seo.NewSchemaGenerator("https://example.com", "Example Kitchen"),
		Sitemap:  seo.NewSitemapGenerator("https://example.com", logger),
		Metrics:  m,
	}, opts, logger)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.api),
		live:    live,
		metrics: m,
	}
}

func decodeContent[T any](t *testing.T, body []byte) response.Content[T] {
	t.Helper()
	var out response.Content[T]
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func decodeError(t *testing.T, body []byte) APIError {
	t.Helper()
	var out APIError
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func requireStatus(t *testing.T, want, got int, body string) {
	t.Helper()
	require.Equal(t, want, got, "unexpected status, body: %s", body)
}

var _ http.Handler = (*Server)(nil)
