package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipespark/content-core/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "cache.db"), TTL: time.Minute}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContentCache(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "recipes:search=:category=:page=1:size=20"

	// Initially empty
	entry, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)

	env := domain.OK([]domain.Recipe{{ID: 1, Name: "Soup"}})
	require.NoError(t, s.Set(ctx, key, env))

	entry, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Stale)
	assert.WithinDuration(t, time.Now(), entry.FetchedAt, 5*time.Second)

	var got domain.Envelope[[]domain.Recipe]
	require.NoError(t, entry.Decode(&got))
	assert.Equal(t, env, got)

	// Different key = miss
	entry, err = s.Get(ctx, "recipe:id:1")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "delete is idempotent")

	entry, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestContentCache_StaleAfterTTL(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "website", domain.OK(domain.WebsiteConfig{ID: 2})))

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	entry, err := s.Get(ctx, "website")
	require.NoError(t, err)
	require.NotNil(t, entry, "stale entries are still returned")
	assert.True(t, entry.Stale)
}

func TestContentCache_Purge(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, k, domain.OK(k)))
	}

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entry, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestOpen_Defaults(t *testing.T) {
	s, err := Open(Options{InMemory: true}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, DefaultTTL, s.TTL())
	assert.Equal(t, DefaultRetention, s.retention)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestCancelledContext(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "x", 1), context.Canceled)
}
