package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/snapshot"
)

type fakeLive struct {
	recipeCalls []int
	lastQuery   contentapi.RecipeQuery
	err         error
}

func (f *fakeLive) Recipes(_ context.Context, q contentapi.RecipeQuery) (domain.Envelope[[]domain.Recipe], error) {
	f.lastQuery = q
	return domain.OK([]domain.Recipe{{ID: 100, Name: "Live"}}), f.err
}

func (f *fakeLive) Recipe(_ context.Context, id int) (domain.Envelope[domain.Recipe], error) {
	f.recipeCalls = append(f.recipeCalls, id)
	return domain.OK(domain.Recipe{ID: id, Name: "Live"}), f.err
}

func (f *fakeLive) Categories(context.Context, bool) (domain.Envelope[[]domain.Category], error) {
	return domain.OK([]domain.Category{{ID: 1}}), f.err
}

func (f *fakeLive) Category(_ context.Context, id int) (domain.Envelope[domain.Category], error) {
	return domain.OK(domain.Category{ID: id}), f.err
}

func (f *fakeLive) Website(context.Context) (domain.Envelope[domain.WebsiteConfig], error) {
	return domain.OK(domain.WebsiteConfig{SiteName: "Live"}), f.err
}

func (f *fakeLive) MenuHierarchy(context.Context) (domain.Envelope[[]domain.MenuNode], error) {
	parent := 1
	return domain.OK([]domain.MenuNode{{ID: 1}, {ID: 2, ParentID: &parent}}), f.err
}

func (f *fakeLive) FindMenuByURL(_ context.Context, url string) (domain.Envelope[domain.MenuNode], error) {
	return domain.OK(domain.MenuNode{ID: 9, URL: url}), f.err
}

func intPtr(v int) *int { return &v }

func testSnapshot(n int) *snapshot.Store {
	recipes := make([]domain.Recipe, 0, n)
	for i := 1; i <= n; i++ {
		recipes = append(recipes, domain.Recipe{
			ID:       i,
			Name:     "Recipe",
			Category: &domain.Category{ID: 1 + i%2, Name: "Cat"},
		})
	}
	return snapshot.New(
		&domain.Envelope[domain.WebsiteConfig]{Success: true, Data: domain.WebsiteConfig{SiteName: "Snap"}},
		domain.Envelope[[]domain.MenuNode]{Success: true, Data: []domain.MenuNode{{ID: 1, URL: "/about"}}},
		domain.Envelope[[]domain.Recipe]{Success: true, Data: recipes},
	)
}

func TestShouldUseStaticFallback(t *testing.T) {
	tests := []struct {
		name   string
		params ListParams
		want   bool
	}{
		{"first page default size", ListParams{PageNumber: 1, PageSize: 20}, true},
		{"all defaults", ListParams{}, true},
		{"search term", ListParams{SearchTerm: "x"}, false},
		{"blank search term", ListParams{SearchTerm: "   "}, true},
		{"category filter", ListParams{CategoryID: intPtr(3)}, false},
		{"second page", ListParams{PageNumber: 2, PageSize: 20}, false},
		{"page size below minimum", ListParams{PageSize: 9}, false},
		{"page size at minimum", ListParams{PageSize: MinFallbackPageSize}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldUseStaticFallback(tt.params))
		})
	}
}

func TestRecipes_FallbackTruncatedToPageSize(t *testing.T) {
	r := New(testSnapshot(30), &fakeLive{})

	q := r.Recipes(ListParams{PageSize: 12})
	require.True(t, q.HasFallback())
	assert.Len(t, q.Fallback.Data, 12)
	assert.Equal(t, "recipes:search=:category=:page=1:size=12", q.KeyString())

	filtered := r.Recipes(ListParams{SearchTerm: "pie"})
	assert.False(t, filtered.HasFallback())
}

func TestRecipes_LiveFetchUsesNormalizedQuery(t *testing.T) {
	live := &fakeLive{}
	r := New(testSnapshot(1), live)

	q := r.Recipes(ListParams{CategoryID: intPtr(2), SearchTerm: " soup "})
	env, err := q.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, env.Data[0].ID)
	assert.Equal(t, contentapi.RecipeQuery{PageNumber: 1, PageSize: 20, CategoryID: intPtr(2), SearchTerm: "soup"}, live.lastQuery)
}

func TestRecipeByRef_Routing(t *testing.T) {
	live := &fakeLive{}
	r := New(testSnapshot(5), live)

	byID := r.RecipeByRef("3")
	assert.Equal(t, []string{"recipe", "id", "3"}, byID.Key)
	require.True(t, byID.HasFallback())
	assert.Equal(t, 3, byID.Fallback.Data.ID)

	bySlug := r.RecipeByRef("recipe-4")
	assert.Equal(t, []string{"recipe", "slug", "recipe-4"}, bySlug.Key)
	require.True(t, bySlug.HasFallback())
	assert.Equal(t, 4, bySlug.Fallback.Data.ID)

	_, err := bySlug.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{4}, live.recipeCalls)
}

func TestRecipeBySlug_NoIDSkipsNetwork(t *testing.T) {
	live := &fakeLive{}
	r := New(testSnapshot(1), live)

	q := r.RecipeBySlug("no-id-here")
	assert.False(t, q.HasFallback())

	env, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Empty(t, live.recipeCalls)
}

func TestRecipeBySlug_FetchesSnapshotRecipeID(t *testing.T) {
	snap := snapshot.New(nil, domain.Envelope[[]domain.MenuNode]{}, domain.OK([]domain.Recipe{
		{ID: 5, Name: "Chili", Slug: "best-chili"},
		{ID: 6, Name: "Soup", RecipeURL: "/recipe/moms-soup"},
		{ID: 55, Name: "Top Ten", Slug: "top-10"},
	}))

	tests := []struct {
		ref    string
		wantID int
	}{
		{"best-chili", 5},
		{"moms-soup", 6},
		{"top-10", 55},
		{"unknown-9", 9},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			live := &fakeLive{}
			q := New(snap, live).RecipeByRef(tt.ref)

			env, err := q.Fetch(context.Background())
			require.NoError(t, err)
			assert.True(t, env.Success)
			assert.Equal(t, []int{tt.wantID}, live.recipeCalls)
		})
	}
}

func TestSingleEntityFallbacks(t *testing.T) {
	r := New(testSnapshot(3), &fakeLive{})

	assert.True(t, r.RecipeByID(1).HasFallback())
	assert.False(t, r.RecipeByID(99).HasFallback())
	assert.True(t, r.CategoryByID(2).HasFallback())
	assert.False(t, r.CategoryByID(7).HasFallback())
	assert.True(t, r.Categories(false).HasFallback())
	assert.True(t, r.WebsiteConfig().HasFallback())
	assert.True(t, r.MenuHierarchy().HasFallback())
	assert.True(t, r.MenuByURL("/about").HasFallback())
	assert.False(t, r.MenuByURL("/nope").HasFallback())
}

func TestFallbacksAreIndependentCopies(t *testing.T) {
	r := New(testSnapshot(2), &fakeLive{})

	first := r.RecipeByIDFallback(1)
	first.Data.Name = "mutated"
	first.Data.Category.Name = "mutated"

	second := r.RecipeByIDFallback(1)
	assert.Equal(t, "Recipe", second.Data.Name)
	assert.Equal(t, "Cat", second.Data.Category.Name)
}

func TestMenuHierarchy_LiveIsTree(t *testing.T) {
	r := New(snapshot.Empty(), &fakeLive{})

	q := r.MenuHierarchy()
	assert.False(t, q.HasFallback())

	env, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, env.Data, 1)
	assert.Len(t, env.Data[0].Children, 1)
}

func TestLiveErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	r := New(testSnapshot(1), &fakeLive{err: boom})

	_, err := r.CategoryByID(1).Fetch(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = r.MenuHierarchy().Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewDynamic_ReadsCurrentSnapshot(t *testing.T) {
	holder := snapshot.NewHolder(nil)
	r := NewDynamic(func() SnapshotSource { return holder.Current() }, &fakeLive{})

	assert.False(t, r.RecipeByID(1).HasFallback())

	holder.Swap(testSnapshot(1))
	assert.True(t, r.RecipeByID(1).HasFallback())
}
