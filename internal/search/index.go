// Package search is an in-memory full-text index over snapshot recipes, used
// to answer searches when the content API is unreachable.
package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/recipespark/content-core/internal/domain"
)

const batchSize = 500

// Index wraps a Bleve index with recipe-specific operations.
//
// All public methods are safe for concurrent use. Rebuild swaps in a fresh
// index under the write lock.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// New creates an empty in-memory index.
func New(logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexRecipes indexes recipes in batches. Recipes without an id are skipped.
func (s *Index) IndexRecipes(recipes []domain.Recipe) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexInto(s.index, recipes)
}

func indexInto(idx bleve.Index, recipes []domain.Recipe) error {
	batch := idx.NewBatch()
	for i := range recipes {
		if recipes[i].ID == 0 {
			continue
		}
		doc := FromRecipe(&recipes[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("add to batch: %w", err)
		}
		if batch.Size() >= batchSize {
			if err := idx.Batch(batch); err != nil {
				return fmt.Errorf("execute batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			return fmt.Errorf("execute batch: %w", err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed recipes.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with recipes.
func (s *Index) Rebuild(recipes []domain.Recipe) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexInto(fresh, recipes); err != nil {
		_ = fresh.Close()
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous search index", "error", err)
	}
	s.logger.Info("search index rebuilt", "recipes", len(recipes))
	return nil
}
