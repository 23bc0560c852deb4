package resolve

import (
	"context"
	"strings"

	"github.com/recipespark/content-core/internal/domain"
)

// Query describes one live read for the caching runtime: a stable key, the
// fetch to run, and optional seed data from the snapshot.
type Query[T any] struct {
	Key      []string
	Fetch    func(ctx context.Context) (domain.Envelope[T], error)
	Fallback *domain.Envelope[T]
}

// HasFallback reports whether the snapshot could answer q.
func (q Query[T]) HasFallback() bool {
	return q.Fallback != nil
}

// KeyString joins the key for use as a cache or dedup key.
func (q Query[T]) KeyString() string {
	return strings.Join(q.Key, ":")
}
