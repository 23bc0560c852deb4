package domain

// Recipe is a single recipe as returned by the recipe endpoints.
// Description, Ingredients and Instructions carry markdown.
type Recipe struct {
	ID           int        `json:"id" validate:"gt=0"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Ingredients  string     `json:"ingredients,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Servings     *int       `json:"servings,omitempty"`
	AuthorNM     string     `json:"authorNM,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Category     *Category  `json:"recipeCategory,omitempty"`
	Slug         string     `json:"slug,omitempty"` // Authoritative when set
	RecipeURL    string     `json:"recipeURL,omitempty"`
	ModifiedAt   *Timestamp `json:"modifiedDT,omitempty"`

	// Optional structured-data fields.
	PrepTime    string     `json:"prepTime,omitempty"`  // ISO 8601 duration
	CookTime    string     `json:"cookTime,omitempty"`  // ISO 8601 duration
	TotalTime   string     `json:"totalTime,omitempty"` // ISO 8601 duration
	Cuisine     string     `json:"cuisine,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	RatingCount *int       `json:"ratingCount,omitempty"`
	Nutrition   *Nutrition `json:"nutrition,omitempty"`

	// Fields the site does not model; they round-trip unchanged.
	Extra map[string]any `json:",unknown"`
}

// Nutrition holds per-serving nutrition facts as display strings.
type Nutrition struct {
	Calories      string `json:"calories,omitempty"`
	Protein       string `json:"protein,omitempty"`
	Fat           string `json:"fat,omitempty"`
	Carbohydrates string `json:"carbohydrates,omitempty"`
}

// Empty reports whether no nutrition fact is set.
func (n *Nutrition) Empty() bool {
	return n == nil || (n.Calories == "" && n.Protein == "" && n.Fat == "" && n.Carbohydrates == "")
}

// HasExplicitSlug reports whether the API supplied a slug for this recipe.
func (r *Recipe) HasExplicitSlug() bool {
	return r.Slug != ""
}

// Clone returns a deep copy of r.
func (r *Recipe) Clone() Recipe {
	c := *r
	c.Servings = clonePtr(r.Servings)
	c.Tags = cloneSlice(r.Tags)
	if r.Category != nil {
		cat := r.Category.Clone()
		c.Category = &cat
	}
	c.ModifiedAt = r.ModifiedAt.clone()
	c.Rating = clonePtr(r.Rating)
	c.RatingCount = clonePtr(r.RatingCount)
	c.Nutrition = clonePtr(r.Nutrition)
	c.Extra = cloneExtra(r.Extra)
	return c
}

// CloneRecipes deep-copies a recipe list.
func CloneRecipes(in []Recipe) []Recipe {
	if in == nil {
		return nil
	}
	out := make([]Recipe, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Category groups recipes. In the snapshot path categories are derived from recipes.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       *int   `json:"order,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
	URL         string `json:"url,omitempty"`
	DomainID    int    `json:"domainID,omitzero"`

	Extra map[string]any `json:",unknown"`
}

// SortOrder returns Order, treating a missing value as 0.
func (c *Category) SortOrder() int {
	if c.Order == nil {
		return 0
	}
	return *c.Order
}

// Active reports whether the category is active. Missing means active.
func (c *Category) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// Clone returns a deep copy of c.
func (c *Category) Clone() Category {
	out := *c
	out.Order = clonePtr(c.Order)
	out.IsActive = clonePtr(c.IsActive)
	out.Extra = cloneExtra(c.Extra)
	return out
}

// CloneCategories deep-copies a category list.
func CloneCategories(in []Category) []Category {
	if in == nil {
		return nil
	}
	out := make([]Category, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
