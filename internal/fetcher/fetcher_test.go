package fetcher

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipespark/content-core/internal/contentapi"
	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/snapshot"
)

var errDown = errors.New("connection refused")

type fakeAPI struct {
	pages      map[int]domain.Envelope[[]domain.Recipe]
	pageErr    map[int]error
	website    domain.Envelope[domain.WebsiteConfig]
	websiteErr error
	menu       domain.Envelope[[]domain.MenuNode]
	menuErr    error
	calls      []int
}

func (f *fakeAPI) Recipes(_ context.Context, q contentapi.RecipeQuery) (domain.Envelope[[]domain.Recipe], error) {
	f.calls = append(f.calls, q.PageNumber)
	if err := f.pageErr[q.PageNumber]; err != nil {
		return domain.Envelope[[]domain.Recipe]{}, err
	}
	return f.pages[q.PageNumber], nil
}

func (f *fakeAPI) Website(context.Context) (domain.Envelope[domain.WebsiteConfig], error) {
	return f.website, f.websiteErr
}

func (f *fakeAPI) MenuHierarchy(context.Context) (domain.Envelope[[]domain.MenuNode], error) {
	return f.menu, f.menuErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func page(first, n int, hasNext bool) domain.Envelope[[]domain.Recipe] {
	recipes := make([]domain.Recipe, n)
	for i := range recipes {
		recipes[i] = domain.Recipe{ID: first + i, Name: "Recipe " + strconv.Itoa(first+i)}
	}
	return domain.Envelope[[]domain.Recipe]{
		Success:    true,
		Data:       recipes,
		Pagination: &domain.Pagination{HasNext: hasNext},
	}
}

func healthyAPI() *fakeAPI {
	return &fakeAPI{
		pages: map[int]domain.Envelope[[]domain.Recipe]{
			1: page(1, 100, true),
			2: page(101, 5, false),
		},
		website: domain.OK(domain.WebsiteConfig{ID: 2, WebsiteTitle: "MoM"}),
		menu:    domain.OK([]domain.MenuNode{{ID: 1, Title: "Home", URL: "/"}}),
	}
}

func TestFetchAllRecipes(t *testing.T) {
	tests := []struct {
		name        string
		api         *fakeAPI
		wantCount   int
		wantPartial bool
		wantCalls   []int
		wantErr     bool
	}{
		{
			name:      "follows hasNext",
			api:       healthyAPI(),
			wantCount: 105,
			wantCalls: []int{1, 2},
		},
		{
			name: "missing pagination stops",
			api: &fakeAPI{pages: map[int]domain.Envelope[[]domain.Recipe]{
				1: domain.OK([]domain.Recipe{{ID: 1}}),
			}},
			wantCount: 1,
			wantCalls: []int{1},
		},
		{
			name: "later page failure keeps earlier pages",
			api: &fakeAPI{
				pages:   map[int]domain.Envelope[[]domain.Recipe]{1: page(1, 100, true)},
				pageErr: map[int]error{2: errDown},
			},
			wantCount:   100,
			wantPartial: true,
			wantCalls:   []int{1, 2},
		},
		{
			name:      "first page failure is an error",
			api:       &fakeAPI{pageErr: map[int]error{1: errDown}},
			wantErr:   true,
			wantCalls: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.api, t.TempDir(), quietLogger(), nil)

			res, err := f.FetchAllRecipes(context.Background())
			assert.Equal(t, tt.wantCalls, tt.api.calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errDown)
				return
			}
			require.NoError(t, err)
			assert.True(t, res.Envelope.Success)
			assert.Len(t, res.Envelope.Data, tt.wantCount)
			assert.Equal(t, fmt.Sprintf("Fetched %d recipes", tt.wantCount), res.Envelope.Message)
			assert.Equal(t, tt.wantPartial, res.Partial)
		})
	}
}

func TestFetchAllRecipes_StopsAtPageLimit(t *testing.T) {
	api := &fakeAPI{pages: map[int]domain.Envelope[[]domain.Recipe]{}}
	for p := 1; p <= MaxRecipePages+5; p++ {
		api.pages[p] = page(p*1000, 1, true)
	}

	res, err := New(api, t.TempDir(), quietLogger(), nil).FetchAllRecipes(context.Background())
	require.NoError(t, err)
	assert.Len(t, api.calls, MaxRecipePages)
	assert.Len(t, res.Envelope.Data, MaxRecipePages)
}

func TestFetchAllRecipes_PartialCountsMetric(t *testing.T) {
	m := metrics.New()
	api := &fakeAPI{
		pages:   map[int]domain.Envelope[[]domain.Recipe]{1: page(1, 1, true)},
		pageErr: map[int]error{2: errDown},
	}

	_, err := New(api, t.TempDir(), quietLogger(), m).FetchAllRecipes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchPartial))
}

func TestRun_WritesCacheAndImportCopies(t *testing.T) {
	root := t.TempDir()
	f := New(healthyAPI(), root, quietLogger(), nil)

	report, err := f.Run(context.Background())
	require.NoError(t, err)

	for _, r := range report.Resources() {
		assert.Equal(t, SourceLive, r.Source, r.Name)
	}
	assert.Equal(t, 105, report.Recipes.Count)

	for _, path := range append(snapshot.CachePaths(root).All(), snapshot.ImportPaths(root).All()...) {
		assert.FileExists(t, path)
	}

	store, err := snapshot.Load(snapshot.ImportPaths(root), quietLogger())
	require.NoError(t, err)
	assert.Len(t, store.Recipes().Data, 105)
	assert.Equal(t, "Fetched 105 recipes", store.Recipes().Message)
	cfg, ok := store.WebsiteConfig()
	require.True(t, ok)
	assert.Equal(t, "MoM", cfg.Data.WebsiteTitle)

	entries, err := os.ReadDir(filepath.Join(root, "data"))
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}

func TestRun_FailureKeepsExistingFile(t *testing.T) {
	root := t.TempDir()
	paths := snapshot.ImportPaths(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.Recipes), 0o755))
	original := []byte(`{"success":true,"data":[{"id":7,"name":"Old"}]}`)
	require.NoError(t, os.WriteFile(paths.Recipes, original, 0o644))

	api := healthyAPI()
	api.pageErr = map[int]error{1: errDown}

	report, err := New(api, root, quietLogger(), nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceImport, report.Recipes.Source)
	assert.ErrorIs(t, report.Recipes.LiveErr, errDown)

	got, err := os.ReadFile(paths.Recipes)
	require.NoError(t, err)
	assert.Equal(t, original, got)
	assert.NoFileExists(t, snapshot.CachePaths(root).Recipes)
}

func TestRun_PromotesCacheWhenImportMissing(t *testing.T) {
	root := t.TempDir()
	cache := snapshot.CachePaths(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(cache.Menu), 0o755))
	cached := []byte(`{"success":true,"data":[{"id":3,"title":"About","url":"about"}]}`)
	require.NoError(t, os.WriteFile(cache.Menu, cached, 0o644))

	api := healthyAPI()
	api.menuErr = errDown

	report, err := New(api, root, quietLogger(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCache, report.Menu.Source)

	got, err := os.ReadFile(snapshot.ImportPaths(root).Menu)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
}

func TestRun_NoFallbackIsFatal(t *testing.T) {
	m := metrics.New()
	api := healthyAPI()
	api.websiteErr = errDown
	api.pageErr = map[int]error{1: errDown}

	report, err := New(api, t.TempDir(), quietLogger(), m).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFallback)
	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "website")
	assert.Contains(t, err.Error(), "recipes")

	assert.Equal(t, SourceNone, report.Website.Source)
	assert.Equal(t, SourceLive, report.Menu.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFallback.WithLabelValues("website")))
}

func TestRun_AgainstHTTPServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recipespark/recipes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
		switch r.URL.Query().Get("pageNumber") {
		case "1":
			fmt.Fprint(w, `{"success":true,"data":[{"id":1,"name":"Soup","averageRating":4.5,"isApproved":true}],"pagination":{"currentPage":1,"totalPages":2,"hasNext":true,"hasPrevious":false}}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("GET /webcms/websites/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"id":2,"websiteTitle":"MoM","theme":"light"}}`)
	})
	mux.HandleFunc("GET /webcms/websites/2/menu-hierarchy", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"id":1,"title":"Home","url":"/","icon":"fa-info","order":3}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := contentapi.New(contentapi.Options{BaseURL: server.URL, RPS: -1}, quietLogger())
	t.Cleanup(client.Close)

	root := t.TempDir()
	report, err := New(client, root, quietLogger(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Recipes.Partial)
	assert.Equal(t, 1, report.Recipes.Count)

	raw, err := os.ReadFile(snapshot.CachePaths(root).Website)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "light", doc["data"].(map[string]any)["theme"], "unknown fields survive the round trip")

	for _, path := range []string{snapshot.CachePaths(root).Recipes, snapshot.ImportPaths(root).Recipes} {
		recipe := firstItem(t, path)
		assert.Equal(t, 4.5, recipe["averageRating"], path)
		assert.Equal(t, true, recipe["isApproved"], path)
	}

	for _, path := range []string{snapshot.CachePaths(root).Menu, snapshot.ImportPaths(root).Menu} {
		item := firstItem(t, path)
		assert.Equal(t, "fa-info", item["icon"], path)
		assert.Equal(t, float64(3), item["order"], path)
		assert.NotContains(t, item, "displayInNavigation", path)
	}
}

// firstItem decodes an envelope file and returns its first data item.
func firstItem(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.Data, path)
	return doc.Data[0]
}

func TestWriteBuildInfo(t *testing.T) {
	dir := t.TempDir()
	before := time.Now()

	info, err := WriteBuildInfo(dir, "1.4.2")
	require.NoError(t, err)

	assert.Equal(t, "1.4.2", info.Version)
	assert.Len(t, info.BuildID, 12)
	assert.GreaterOrEqual(t, info.BuildTimestamp, before.UnixMilli())

	raw, err := os.ReadFile(filepath.Join(dir, BuildInfoFile))
	require.NoError(t, err)
	var got BuildInfo
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, info, got)

	parsed, err := time.Parse(time.RFC3339, got.BuildDate)
	require.NoError(t, err)
	assert.Equal(t, info.BuildTimestamp, parsed.UnixMilli())
}
