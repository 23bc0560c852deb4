package resolve

import (
	"strconv"
	"strings"

	"github.com/recipespark/content-core/internal/contentapi"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20

	// MinFallbackPageSize is the smallest page the snapshot may answer.
	MinFallbackPageSize = 10
)

// ListParams filters a recipe listing. Zero page fields take defaults.
type ListParams struct {
	SearchTerm string
	CategoryID *int
	PageNumber int
	PageSize   int
}

// Normalize returns p with defaults applied and the search term trimmed.
func (p ListParams) Normalize() ListParams {
	p.SearchTerm = strings.TrimSpace(p.SearchTerm)
	if p.PageNumber <= 0 {
		p.PageNumber = DefaultPageNumber
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Query converts p to the API's listing query.
func (p ListParams) Query() contentapi.RecipeQuery {
	n := p.Normalize()
	return contentapi.RecipeQuery{
		PageNumber: n.PageNumber,
		PageSize:   n.PageSize,
		CategoryID: n.CategoryID,
		SearchTerm: n.SearchTerm,
	}
}

func (p ListParams) key() []string {
	n := p.Normalize()
	cat := ""
	if n.CategoryID != nil {
		cat = strconv.Itoa(*n.CategoryID)
	}
	return []string{
		"recipes",
		"search=" + n.SearchTerm,
		"category=" + cat,
		"page=" + strconv.Itoa(n.PageNumber),
		"size=" + strconv.Itoa(n.PageSize),
	}
}

// ShouldUseStaticFallback reports whether the snapshot can stand in for the
// listing described by p. The snapshot is one unfiltered first page, so any
// search, category filter, later page or tiny page size disqualifies it.
func ShouldUseStaticFallback(p ListParams) bool {
	n := p.Normalize()
	return n.SearchTerm == "" &&
		n.CategoryID == nil &&
		n.PageNumber == 1 &&
		n.PageSize >= MinFallbackPageSize
}
