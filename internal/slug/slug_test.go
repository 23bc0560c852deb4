package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recipespark/content-core/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Mom's Best Chocolate Chip Cookies!", "moms-best-chocolate-chip-cookies"},
		{"Gluten-Free Pizza (New!)", "gluten-free-pizza-new"},
		{"Crème Brûlée", "creme-brulee"},
		{"Grandma’s Pie", "grandmas-pie"},
		{"  multi   word ", "multi-word"},
		{"snake_case_name", "snake-case-name"},
		{"Mom\u00a0Pie", "mom-pie"},
		{"Mom\u2003Pie", "mom-pie"},
		{"Mom\u3000Pie", "mom-pie"},
		{"--leading--", "leading"},
		{"a -- b", "a-b"},
		{"🍕", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Slugify(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, Slugify(got), "slugify must be idempotent")
		})
	}
}

func TestRecipe_Provenance(t *testing.T) {
	provided := Recipe(&domain.Recipe{ID: 1, Name: "Chili", Slug: "house-chili"})
	assert.True(t, provided.Provided())
	assert.Equal(t, "house-chili", provided.Value)

	derived := Recipe(&domain.Recipe{ID: 1, Name: "Chili"})
	assert.False(t, derived.Provided())
	assert.Equal(t, "chili", derived.Value)
}

func TestUniqueRecipeSlug(t *testing.T) {
	tests := []struct {
		name   string
		recipe domain.Recipe
		want   string
	}{
		{"derived", domain.Recipe{ID: 42, Name: "Mom's Chili"}, "moms-chili-42"},
		{"provided wins", domain.Recipe{ID: 42, Name: "Mom's Chili", Slug: "chili"}, "chili"},
		{"nameless falls back to id", domain.Recipe{ID: 7}, "7-7"},
		{"unsluggable name", domain.Recipe{ID: 9, Name: "!!!"}, "9-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueRecipeSlug(&tt.recipe))
		})
	}
}

func TestUniqueRecipeSlug_RoundTripsID(t *testing.T) {
	names := []string{"Soup", "Crème Brûlée", "", "Pasta 2000", "12"}
	for i, name := range names {
		r := domain.Recipe{ID: i + 1, Name: name}
		id, ok := ExtractID(UniqueRecipeSlug(&r))
		assert.True(t, ok, name)
		assert.Equal(t, r.ID, id, name)
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		slug   string
		wantID int
		wantOK bool
	}{
		{"chili-42", 42, true},
		{"pasta-2000-7", 7, true},
		{"chili", 0, false},
		{"chili-", 0, false},
		{"42", 0, false},
		{"", 0, false},
		{"big-99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			id, ok := ExtractID(tt.slug)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseRef(t *testing.T) {
	assert.Equal(t, Ref{ID: 12, IsID: true}, ParseRef("12"))
	assert.Equal(t, Ref{Slug: "chili-12"}, ParseRef("chili-12"))
	assert.Equal(t, Ref{Slug: ""}, ParseRef(""))
	assert.Equal(t, Ref{Slug: "99999999999999999999999"}, ParseRef("99999999999999999999999"))
}
