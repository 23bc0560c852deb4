package contentapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/recipespark/content-core/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:      server.URL,
		WebsiteID:    2,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		RPS:          -1,
	}, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	client.http = server.Client()
	client.sleep = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(client.Close)

	return client
}

func TestClient_Recipes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{
			name:       "page of recipes",
			body:       `{"success":true,"data":[{"id":1,"name":"Soup"},{"id":2,"name":"Stew"}],"pagination":{"currentPage":1,"totalPages":3,"hasNext":true,"hasPrevious":false}}`,
			statusCode: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "empty list",
			body:       `{"success":true,"data":[]}`,
			statusCode: http.StatusOK,
		},
		{
			name:       "success false",
			body:       `{"success":false,"data":[],"message":"database offline"}`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedEnvelope,
		},
		{
			name:       "data not a list",
			body:       `{"success":true,"data":{"items":[]}}`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedEnvelope,
		},
		{
			name:       "missing data",
			body:       `{"success":true}`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedEnvelope,
		},
		{
			name:       "recipe without id",
			body:       `{"success":true,"data":[{"name":"Nameless"}]}`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedEnvelope,
		},
		{
			name:       "not json",
			body:       `<html>oops</html>`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedEnvelope,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrServer,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/recipespark/recipes", r.URL.Path)
				w.WriteHeader(tt.statusCode)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			})

			env, err := client.Recipes(context.Background(), RecipeQuery{PageNumber: 1, PageSize: 100})

			if tt.wantErr != nil {
				require.Error(t, err)
				var apiErr *Error
				require.ErrorAs(t, err, &apiErr)
				assert.ErrorIs(t, apiErr.Err, tt.wantErr)
				assert.True(t, IsUnavailable(err))
				return
			}

			require.NoError(t, err)
			assert.True(t, env.Success)
			assert.Len(t, env.Data, tt.wantCount)
		})
	}
}

func TestClient_RecipesQueryParams(t *testing.T) {
	cat := 4
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("pageNumber"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "4", q.Get("categoryId"))
		assert.Equal(t, "chili", q.Get("searchTerm"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	_, err := client.Recipes(context.Background(), RecipeQuery{PageNumber: 2, PageSize: 20, CategoryID: &cat, SearchTerm: " chili "})
	require.NoError(t, err)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"id":7,"name":"Pie"}}`))
	})

	env, err := client.Recipe(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Pie", env.Data.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Recipe(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ErrorsCarryUpstreamCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Website(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
	assert.Contains(t, err.Error(), "contentapi website [2]")
}

func TestClient_Website(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webcms/websites/2", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"id":2,"websiteTitle":"Mechanics of Motherhood","theme":"warm"}}`))
	})

	env, err := client.Website(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mechanics of Motherhood", env.Data.DisplayName())
	assert.Equal(t, "warm", env.Data.Extra["theme"])
}

func TestClient_MenuHierarchy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webcms/websites/2/menu-hierarchy", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":[{"id":1,"title":"About","url":"about"},{"id":2,"title":"Team","parent_page":1}]}`))
	})

	env, err := client.MenuHierarchy(context.Background())
	require.NoError(t, err)
	require.Len(t, env.Data, 2)
	require.NotNil(t, env.Data[1].ParentID)
	assert.Equal(t, 1, *env.Data[1].ParentID)
}

func TestClient_FindMenuByURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/webcms/menus":
			assert.Equal(t, "2", r.URL.Query().Get("domainId"))
			assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
			w.Write([]byte(`{"success":true,"data":{"items":[{"id":5,"title":"About","url":"/about"}]}}`))
		case "/webcms/menus/5":
			w.Write([]byte(`{"success":true,"data":{"id":5,"title":"About","url":"/about","content":"<p>Hi</p>"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	env, err := client.FindMenuByURL(context.Background(), "/about")
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi</p>", env.Data.Content)

	_, err = client.FindMenuByURL(context.Background(), "/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Categories(ctx, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSection(t *testing.T) {
	assert.Equal(t, "recipespark", section("/recipespark/recipes/4"))
	assert.Equal(t, "webcms", section("/webcms/menus"))
	assert.Equal(t, "health", section("/health"))
}
