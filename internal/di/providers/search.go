package providers

import (
	"github.com/samber/do/v2"

	"github.com/recipespark/content-core/internal/logger"
	"github.com/recipespark/content-core/internal/search"
	"github.com/recipespark/content-core/internal/snapshot"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex builds the in-memory recipe index from the current snapshot.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	holder := do.MustInvoke[*snapshot.Holder](i)

	idx, err := search.New(logger.Component(log.Logger, "search"))
	if err != nil {
		return nil, err
	}

	recipes := holder.Current().Recipes()
	if err := idx.IndexRecipes(recipes.Data); err != nil {
		_ = idx.Close()
		return nil, err
	}

	count, _ := idx.DocumentCount()
	log.Info("Search index built", "documents", count)

	return &SearchIndexHandle{Index: idx}, nil
}
