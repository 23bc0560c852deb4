package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipespark/content-core/internal/http/response"
)

// jsonLD is a decoded schema object.
type jsonLD = map[string]any

func TestRecipeSchema(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/schema/recipes/moms-chili-42")
	requireStatus(t, http.StatusOK, resp.Code, resp.Body.String())

	var body response.Content[struct {
		Recipe      jsonLD `json:"recipe"`
		Breadcrumbs jsonLD `json:"breadcrumbs"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, "snapshot", body.Source)
	assert.Equal(t, "Recipe", body.Data.Recipe["@type"])
	assert.Equal(t, "https://example.com/recipes/moms-chili-42", body.Data.Recipe["url"])
	assert.Equal(t, "4 servings", body.Data.Recipe["recipeYield"])

	crumbs, ok := body.Data.Breadcrumbs["itemListElement"].([]any)
	require.True(t, ok)
	require.Len(t, crumbs, 3)
	last := crumbs[2].(jsonLD)
	assert.Equal(t, "Mom's Chili", last["name"])
	assert.Equal(t, "https://example.com/recipes/moms-chili-42", last["item"])
}

func TestRecipeSchema_Missing(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/schema/recipes/unknown-dish")
	requireStatus(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestOrganizationSchema_UsesWebsiteConfig(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/schema/organization")
	requireStatus(t, http.StatusOK, resp.Code, resp.Body.String())

	var body response.Content[jsonLD]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Organization", body.Data["@type"])
	assert.Equal(t, "Example Kitchen", body.Data["name"])
	assert.Equal(t, "Family recipes", body.Data["description"])
}

func TestWebSiteSchema(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/schema/website")
	requireStatus(t, http.StatusOK, resp.Code, resp.Body.String())

	var body response.Content[jsonLD]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "WebSite", body.Data["@type"])
	assert.Equal(t, CacheOneHour, resp.Header().Get("Cache-Control"))
}
