// Package slug derives URL slugs for recipes and recovers recipe ids from them.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/recipespark/content-core/internal/domain"
)

var (
	// Matches whitespace, including Unicode space separators, and underscores.
	wordSeparatorRe = regexp.MustCompile(`[\s\p{Z}_]+`)
	// Matches anything outside the slug alphabet.
	nonSlugRe = regexp.MustCompile(`[^a-z0-9-]+`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-{2,}`)
	// Matches a trailing numeric id suffix.
	idSuffixRe = regexp.MustCompile(`-(\d+)$`)
	// Matches a bare numeric reference.
	numericRe = regexp.MustCompile(`^\d+$`)
)

// Slugify converts text to a URL-safe slug.
//
// Normalization rules:
//  1. Lowercase and trim
//  2. Remove apostrophes
//  3. Fold accented letters to their base letter
//  4. Replace whitespace and underscores with dashes
//  5. Remove everything except a-z, 0-9 and dashes
//  6. Collapse and trim dashes
//
// Examples:
//
//	"Mom's Best Chocolate Chip Cookies!" → "moms-best-chocolate-chip-cookies"
//	"Gluten-Free Pizza (New!)"          → "gluten-free-pizza-new"
//	"Crème Brûlée"                      → "creme-brulee"
func Slugify(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	s = foldMarks(s)
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonSlugRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// foldMarks decomposes s and drops combining marks, so "é" becomes "e".
func foldMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Recipe returns the slug for r tagged with where it came from.
// An API slug wins; otherwise the name is slugified, falling back to the id.
func Recipe(r *domain.Recipe) domain.SlugSource {
	if r.HasExplicitSlug() {
		return domain.ProvidedSlug(r.Slug)
	}
	if s := Slugify(r.Name); s != "" {
		return domain.DerivedSlug(s)
	}
	return domain.DerivedSlug(strconv.Itoa(r.ID))
}

// RecipeSlug returns the base slug for r without an id suffix.
func RecipeSlug(r *domain.Recipe) string {
	return Recipe(r).String()
}

// UniqueRecipeSlug returns a slug that identifies r among all recipes.
// Derived slugs get the id appended so ExtractID can recover it.
func UniqueRecipeSlug(r *domain.Recipe) string {
	src := Recipe(r)
	if src.Provided() {
		return src.Value
	}
	return src.Value + "-" + strconv.Itoa(r.ID)
}

// ExtractID recovers the numeric id suffix of a slug such as "chili-42".
func ExtractID(slug string) (int, bool) {
	m := idSuffixRe.FindStringSubmatch(slug)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// Ref is a recipe reference from a URL: either a numeric id or a slug.
type Ref struct {
	ID   int
	Slug string
	IsID bool
}

// ParseRef classifies ref. All-digit refs that fit in an int are ids.
func ParseRef(ref string) Ref {
	if numericRe.MatchString(ref) {
		if id, err := strconv.Atoi(ref); err == nil {
			return Ref{ID: id, IsID: true}
		}
	}
	return Ref{Slug: ref}
}
