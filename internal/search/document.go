package search

import (
	"strconv"
	"strings"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/seo"
	"github.com/recipespark/content-core/internal/slug"
)

// Document is the indexed form of a recipe.
type Document struct {
	ID          string
	RecipeID    int
	Slug        string
	Name        string
	Description string
	Ingredients string
	Author      string
	Category    string
	CategoryID  int
	Tags        []string
	ModifiedAt  int64 // unix seconds, 0 when unknown
}

// FromRecipe builds the document for r. Markdown fields are reduced to text.
func FromRecipe(r *domain.Recipe) *Document {
	doc := &Document{
		ID:          strconv.Itoa(r.ID),
		RecipeID:    r.ID,
		Slug:        slug.UniqueRecipeSlug(r),
		Name:        r.Name,
		Description: seo.PlainText(r.Description),
		Ingredients: strings.Join(seo.ParseListItems(r.Ingredients), "\n"),
		Author:      r.AuthorNM,
		Tags:        normalizeTags(r.Tags),
	}
	if r.Category != nil {
		doc.Category = strings.ToLower(r.Category.Name)
		doc.CategoryID = r.Category.ID
	}
	if r.ModifiedAt.Valid() {
		doc.ModifiedAt = r.ModifiedAt.Unix()
	}
	return doc
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ToMap converts the document to the field names the mapping uses.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"recipe_id":   d.RecipeID,
		"slug":        d.Slug,
		"name":        d.Name,
		"description": d.Description,
		"ingredients": d.Ingredients,
		"author":      d.Author,
		"category":    d.Category,
		"tags":        d.Tags,
	}
	if d.CategoryID != 0 {
		m["category_id"] = d.CategoryID
	}
	if d.ModifiedAt != 0 {
		m["modified_at"] = d.ModifiedAt
	}
	return m
}
