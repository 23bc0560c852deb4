// Package snapshot serves content from the JSON files written at build time.
//
// A Store is immutable once built. Lookup indexes are built on first use and
// every read returns a deep copy, so callers may mutate results freely.
package snapshot

import (
	"cmp"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/hierarchy"
	"github.com/recipespark/content-core/internal/slug"
)

// Store holds one loaded snapshot.
type Store struct {
	website *domain.Envelope[domain.WebsiteConfig]
	menu    domain.Envelope[[]domain.MenuNode]
	recipes domain.Envelope[[]domain.Recipe]

	recipeOnce   sync.Once
	recipeByID   map[int]int
	recipeBySlug map[string]int

	categoryOnce sync.Once
	categories   []domain.Category
	categoryByID map[int]int

	treeOnce sync.Once
	tree     []domain.MenuNode
}

// New builds a store from in-memory envelopes. The inputs are copied.
// A nil website means the snapshot has no site config.
func New(
	website *domain.Envelope[domain.WebsiteConfig],
	menu domain.Envelope[[]domain.MenuNode],
	recipes domain.Envelope[[]domain.Recipe],
) *Store {
	s := &Store{
		menu:    domain.WithData(menu, domain.CloneMenu(menu.Data)),
		recipes: domain.WithData(recipes, domain.CloneRecipes(recipes.Data)),
	}
	if website != nil {
		w := domain.WithData(*website, website.Data.Clone())
		s.website = &w
	}
	if s.menu.Data == nil {
		s.menu.Data = []domain.MenuNode{}
	}
	if s.recipes.Data == nil {
		s.recipes.Data = []domain.Recipe{}
	}
	return s
}

// Empty returns a store with no content.
func Empty() *Store {
	return New(nil, domain.Envelope[[]domain.MenuNode]{}, domain.Envelope[[]domain.Recipe]{})
}

// WebsiteConfig returns the site config. ok is false when the snapshot has none.
func (s *Store) WebsiteConfig() (*domain.Envelope[domain.WebsiteConfig], bool) {
	if s.website == nil {
		return nil, false
	}
	w := domain.WithData(*s.website, s.website.Data.Clone())
	return &w, true
}

// MenuFlat returns the menu exactly as stored, without children.
func (s *Store) MenuFlat() domain.Envelope[[]domain.MenuNode] {
	return domain.WithData(s.menu, domain.CloneMenu(s.menu.Data))
}

// MenuHierarchy returns the menu arranged as a tree.
func (s *Store) MenuHierarchy() domain.Envelope[[]domain.MenuNode] {
	s.treeOnce.Do(func() {
		s.tree = hierarchy.Build(s.menu.Data)
	})
	return domain.WithData(s.menu, domain.CloneMenu(s.tree))
}

// MenuByURL finds the page whose url or link url equals url.
func (s *Store) MenuByURL(url string) (domain.Envelope[domain.MenuNode], bool) {
	if url == "" {
		return domain.Envelope[domain.MenuNode]{}, false
	}
	for i := range s.menu.Data {
		n := &s.menu.Data[i]
		if n.URL == url || n.LinkURL == url {
			return domain.OK(n.Clone()), true
		}
	}
	return domain.Envelope[domain.MenuNode]{}, false
}

// Recipes returns every recipe in the snapshot.
func (s *Store) Recipes() domain.Envelope[[]domain.Recipe] {
	return domain.WithData(s.recipes, domain.CloneRecipes(s.recipes.Data))
}

// RecipeByID looks a recipe up by id.
func (s *Store) RecipeByID(id int) (domain.Envelope[domain.Recipe], bool) {
	s.indexRecipes()
	i, ok := s.recipeByID[id]
	if !ok {
		return domain.Envelope[domain.Recipe]{}, false
	}
	return domain.OK(s.recipes.Data[i].Clone()), true
}

// RecipeBySlug looks a recipe up by slug, ignoring case.
// Explicit slugs, recipeURL tails and id-suffixed derived slugs all match.
// An unindexed slug with an id suffix falls back to the id.
func (s *Store) RecipeBySlug(ref string) (domain.Envelope[domain.Recipe], bool) {
	key := strings.ToLower(strings.TrimSpace(ref))
	if key == "" {
		return domain.Envelope[domain.Recipe]{}, false
	}
	s.indexRecipes()
	if i, ok := s.recipeBySlug[key]; ok {
		return domain.OK(s.recipes.Data[i].Clone()), true
	}
	if id, ok := slug.ExtractID(key); ok {
		return s.RecipeByID(id)
	}
	return domain.Envelope[domain.Recipe]{}, false
}

func (s *Store) indexRecipes() {
	s.recipeOnce.Do(func() {
		s.recipeByID = make(map[int]int, len(s.recipes.Data))
		s.recipeBySlug = make(map[string]int, len(s.recipes.Data)*2)

		add := func(key string, i int) {
			key = strings.ToLower(key)
			if key == "" {
				return
			}
			if _, taken := s.recipeBySlug[key]; !taken {
				s.recipeBySlug[key] = i
			}
		}

		for i := range s.recipes.Data {
			r := &s.recipes.Data[i]
			if r.ID != 0 {
				if _, taken := s.recipeByID[r.ID]; !taken {
					s.recipeByID[r.ID] = i
				}
			}
			add(r.Slug, i)
			add(urlTail(r.RecipeURL), i)
			add(slug.UniqueRecipeSlug(r), i)
		}
	})
}

// urlTail returns the last non-empty path segment of u.
func urlTail(u string) string {
	u = strings.TrimRight(u, "/")
	if u == "" {
		return ""
	}
	return path.Base(u)
}

// Categories returns the categories referenced by snapshot recipes, ordered by
// their sort order. Inactive categories are dropped unless includeInactive.
func (s *Store) Categories(includeInactive bool) domain.Envelope[[]domain.Category] {
	s.indexCategories()
	out := make([]domain.Category, 0, len(s.categories))
	for i := range s.categories {
		if !includeInactive && !s.categories[i].Active() {
			continue
		}
		out = append(out, s.categories[i].Clone())
	}
	return domain.OK(out)
}

// CategoryByID looks up a category referenced by snapshot recipes.
func (s *Store) CategoryByID(id int) (domain.Envelope[domain.Category], bool) {
	s.indexCategories()
	i, ok := s.categoryByID[id]
	if !ok {
		return domain.Envelope[domain.Category]{}, false
	}
	return domain.OK(s.categories[i].Clone()), true
}

func (s *Store) indexCategories() {
	s.categoryOnce.Do(func() {
		seen := make(map[int]bool)
		for i := range s.recipes.Data {
			c := s.recipes.Data[i].Category
			if c == nil || c.ID == 0 || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			s.categories = append(s.categories, c.Clone())
		}

		slices.SortStableFunc(s.categories, func(a, b domain.Category) int {
			return cmp.Compare(a.SortOrder(), b.SortOrder())
		})

		s.categoryByID = make(map[int]int, len(s.categories))
		for i := range s.categories {
			s.categoryByID[s.categories[i].ID] = i
		}
	})
}

// Holder publishes the current store so a reload can swap it atomically.
type Holder struct {
	current atomic.Pointer[Store]
}

// NewHolder returns a holder serving s. A nil s serves an empty store.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.Swap(s)
	return h
}

// Current returns the store in use.
func (h *Holder) Current() *Store {
	return h.current.Load()
}

// Swap replaces the store in use.
func (h *Holder) Swap(s *Store) {
	if s == nil {
		s = Empty()
	}
	h.current.Store(s)
}
