package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search.
type Params struct {
	Query      string
	CategoryID *int
	Tags       []string // all must match
	Limit      int
	Offset     int
	Highlight  bool
}

// Result is one page of search hits.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets []FacetCount `json:"categories,omitempty"`
}

// Hit is a matching recipe.
type Hit struct {
	RecipeID   int               `json:"recipe_id"`
	Slug       string            `json:"slug"`
	Name       string            `json:"name"`
	Author     string            `json:"author,omitempty"`
	Category   string            `json:"category,omitempty"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func (p Params) normalize() Params {
	p.Query = strings.TrimSpace(p.Query)
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	p.Limit = min(p.Limit, MaxLimit)
	p.Offset = max(p.Offset, 0)
	return p
}

// Search runs params against the index.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	params = params.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"recipe_id", "slug", "name", "author", "category"}
	req.AddFacet("category", bleve.NewFacetRequest("category", 20))
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if id, ok := h.Fields["recipe_id"].(float64); ok {
			hit.RecipeID = int(id)
		}
		if v, ok := h.Fields["slug"].(string); ok {
			hit.Slug = v
		}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		if v, ok := h.Fields["category"].(string); ok {
			hit.Category = v
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string)
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	if f, ok := res.Facets["category"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			out.Facets = append(out.Facets, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return out, nil
}

// buildQuery matches text on name (boosted), tags, ingredients and
// description, with a fuzzy and a prefix pass on names for typos and
// search-as-you-type. Filters are conjoined.
func buildQuery(p Params) query.Query {
	var queries []query.Query

	if p.Query != "" {
		nameMatch := bleve.NewMatchQuery(p.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		descMatch := bleve.NewMatchQuery(p.Query)
		descMatch.SetField("description")

		ingredientMatch := bleve.NewMatchQuery(p.Query)
		ingredientMatch.SetField("ingredients")
		ingredientMatch.SetBoost(1.5)

		tagMatch := bleve.NewTermQuery(strings.ToLower(p.Query))
		tagMatch.SetField("tags")
		tagMatch.SetBoost(2.0)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(p.Query))
		fuzzy.SetField("name")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.5)

		text := []query.Query{nameMatch, descMatch, ingredientMatch, tagMatch, fuzzy}

		// Prefix matching for short single words
		if len(p.Query) >= 2 && !strings.Contains(p.Query, " ") {
			prefix := bleve.NewPrefixQuery(strings.ToLower(p.Query))
			prefix.SetField("name")
			prefix.SetBoost(1.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if p.CategoryID != nil {
		id := float64(*p.CategoryID)
		inclusive := true
		q := bleve.NewNumericRangeInclusiveQuery(&id, &id, &inclusive, &inclusive)
		q.SetField("category_id")
		queries = append(queries, q)
	}

	for _, tag := range p.Tags {
		q := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(tag)))
		q.SetField("tags")
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
