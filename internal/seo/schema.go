package seo

import (
	"bytes"
	"encoding/json/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/slug"
)

const (
	DefaultSiteURL     = "https://mechanicsofmotherhood.com"
	DefaultSiteName    = "Mechanics of Motherhood"
	DefaultDescription = "Delicious family recipes and cooking tips for busy moms."
	DefaultLogo        = "/logo.png"

	schemaContext = "https://schema.org"
)

// DefaultSameAs lists the site's social profiles.
var DefaultSameAs = []string{
	"https://www.facebook.com/mechanicsofmotherhood",
	"https://www.instagram.com/mechanicsofmotherhood",
	"https://www.pinterest.com/mechanicsofmotherhood",
}

// Field is one key of a JSON-LD object.
type Field struct {
	Key   string
	Value any
}

// Schema is a JSON-LD object that keeps its keys in insertion order.
type Schema []Field

// Set appends key unless value is empty.
func (s Schema) Set(key string, value any) Schema {
	switch v := value.(type) {
	case nil:
		return s
	case string:
		if v == "" {
			return s
		}
	case []string:
		if len(v) == 0 {
			return s
		}
	case Schema:
		if len(v) == 0 {
			return s
		}
	}
	return append(s, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (s Schema) Get(key string) (any, bool) {
	for _, f := range s {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes s as an object in field order.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Crumb is one breadcrumb step.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SchemaGenerator builds Schema.org objects for the site.
type SchemaGenerator struct {
	SiteURL     string
	SiteName    string
	Description string
	Logo        string
	SameAs      []string
}

// NewSchemaGenerator returns a generator with the site defaults for empty fields.
func NewSchemaGenerator(siteURL, siteName string) *SchemaGenerator {
	g := &SchemaGenerator{
		SiteURL:     strings.TrimRight(siteURL, "/"),
		SiteName:    siteName,
		Description: DefaultDescription,
		Logo:        DefaultLogo,
		SameAs:      DefaultSameAs,
	}
	if g.SiteURL == "" {
		g.SiteURL = DefaultSiteURL
	}
	if g.SiteName == "" {
		g.SiteName = DefaultSiteName
	}
	return g
}

func (g *SchemaGenerator) abs(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.SiteURL + path
}

// Recipe builds the Recipe object for r.
func (g *SchemaGenerator) Recipe(r *domain.Recipe) Schema {
	s := Schema{
		{"@context", schemaContext},
		{"@type", "Recipe"},
		{"name", r.Name},
		{"description", r.Description},
	}

	s = s.Set("url", g.SiteURL+"/recipes/"+slug.UniqueRecipeSlug(r))
	if r.AuthorNM != "" {
		s = s.Set("author", Schema{{"@type", "Person"}, {"name", r.AuthorNM}})
	}
	if r.Servings != nil && *r.Servings > 0 {
		s = s.Set("recipeYield", strconv.Itoa(*r.Servings)+" servings")
	}
	if r.Ingredients != "" {
		s = s.Set("recipeIngredient", ParseListItems(r.Ingredients))
	}
	if r.Instructions != "" {
		s = s.Set("recipeInstructions", howToSteps(ParseListItems(r.Instructions)))
	}
	s = s.Set("image", r.ImageURL)
	s = s.Set("prepTime", r.PrepTime)
	s = s.Set("cookTime", r.CookTime)
	s = s.Set("totalTime", totalTime(r))
	if r.Category != nil {
		s = s.Set("recipeCategory", r.Category.Name)
	}
	s = s.Set("recipeCuisine", r.Cuisine)
	if len(r.Tags) > 0 {
		s = s.Set("keywords", strings.Join(r.Tags, ", "))
	}
	if r.Rating != nil && *r.Rating > 0 && r.RatingCount != nil && *r.RatingCount > 0 {
		s = s.Set("aggregateRating", Schema{
			{"@type", "AggregateRating"},
			{"ratingValue", *r.Rating},
			{"ratingCount", *r.RatingCount},
		})
	}
	if !r.Nutrition.Empty() {
		s = s.Set("nutrition", Schema{{"@type", "NutritionInformation"}}.
			Set("calories", r.Nutrition.Calories).
			Set("proteinContent", r.Nutrition.Protein).
			Set("fatContent", r.Nutrition.Fat).
			Set("carbohydrateContent", r.Nutrition.Carbohydrates))
	}
	return s
}

// totalTime prefers the explicit value, else sums prep and cook when both are positive.
func totalTime(r *domain.Recipe) string {
	if r.TotalTime != "" {
		return r.TotalTime
	}
	if r.PrepTime == "" || r.CookTime == "" {
		return ""
	}
	prep, ok1 := ParseDurationMinutes(r.PrepTime)
	cook, ok2 := ParseDurationMinutes(r.CookTime)
	if !ok1 || !ok2 || prep <= 0 || cook <= 0 {
		return ""
	}
	return "PT" + strconv.Itoa(prep+cook) + "M"
}

func howToSteps(lines []string) []Schema {
	steps := make([]Schema, 0, len(lines))
	for i, text := range lines {
		steps = append(steps, Schema{
			{"@type", "HowToStep"},
			{"position", i + 1},
			{"text", text},
		})
	}
	return steps
}

// Breadcrumbs builds a BreadcrumbList. Home is prepended unless some item
// already has path "/", and repeated paths are dropped. Empty input yields nil.
func (g *SchemaGenerator) Breadcrumbs(items []Crumb) Schema {
	if len(items) == 0 {
		return nil
	}

	all := make([]Crumb, 0, len(items)+1)
	if !slices.ContainsFunc(items, func(c Crumb) bool { return c.Path == "/" }) {
		all = append(all, Crumb{Name: "Home", Path: "/"})
	}
	all = append(all, items...)

	seen := make(map[string]bool, len(all))
	list := make([]Schema, 0, len(all))
	for _, c := range all {
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		list = append(list, Schema{
			{"@type", "ListItem"},
			{"position", len(list) + 1},
			{"name", c.Name},
			{"item", g.SiteURL + c.Path},
		})
	}

	return Schema{
		{"@context", schemaContext},
		{"@type", "BreadcrumbList"},
		{"itemListElement", list},
	}
}

// RecipeBreadcrumbs is the trail Home > Recipes > r.
func (g *SchemaGenerator) RecipeBreadcrumbs(r *domain.Recipe) Schema {
	return g.Breadcrumbs([]Crumb{
		{Name: "Recipes", Path: "/recipes"},
		{Name: r.Name, Path: "/recipes/" + slug.UniqueRecipeSlug(r)},
	})
}

// Organization builds the Organization object, preferring values from cfg.
func (g *SchemaGenerator) Organization(cfg *domain.WebsiteConfig) Schema {
	name, desc, logo, sameAs := g.SiteName, g.Description, g.Logo, g.SameAs
	if cfg != nil {
		if n := cfg.DisplayName(); n != "" {
			name = n
		}
		if cfg.Description != "" {
			desc = cfg.Description
		}
		if cfg.Logo != "" {
			logo = cfg.Logo
		}
		if len(cfg.SocialLinks) > 0 {
			sameAs = cfg.SocialLinks
		}
	}

	s := Schema{
		{"@context", schemaContext},
		{"@type", "Organization"},
		{"name", name},
		{"description", desc},
		{"url", g.SiteURL},
	}
	if logo != "" {
		s = s.Set("logo", g.abs(logo))
	}
	return s.Set("sameAs", append([]string(nil), sameAs...))
}

// WebSite builds the WebSite object with its recipe SearchAction.
func (g *SchemaGenerator) WebSite() Schema {
	return Schema{
		{"@context", schemaContext},
		{"@type", "WebSite"},
		{"name", g.SiteName},
		{"url", g.SiteURL},
		{"potentialAction", Schema{
			{"@type", "SearchAction"},
			{"target", Schema{
				{"@type", "EntryPoint"},
				{"urlTemplate", g.SiteURL + "/recipes?search={search_term_string}"},
			}},
			{"query-input", "required name=search_term_string"},
		}},
	}
}
