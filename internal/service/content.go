// Package service reconciles live content API queries with the response
// cache and the build-time snapshot.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/recipespark/content-core/internal/domain"
	"github.com/recipespark/content-core/internal/metrics"
	"github.com/recipespark/content-core/internal/resolve"
	"github.com/recipespark/content-core/internal/store"
)

// DefaultLiveTimeout bounds a single live fetch made on behalf of a request.
const DefaultLiveTimeout = 8 * time.Second

// Source says where a resolved payload came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceSnapshot Source = "snapshot"
)

// Result is a resolved envelope and its provenance.
type Result[T any] struct {
	Envelope domain.Envelope[T]
	Source   Source
	Stale    bool
}

// Cache is the response cache the service reads through.
type Cache interface {
	Get(ctx context.Context, key string) (*store.Entry, error)
	Set(ctx context.Context, key string, payload any) error
}

// Options tunes a ContentService.
type Options struct {
	LiveTimeout time.Duration
}

// ContentService resolves queries: fresh cache, then live, then the snapshot
// fallback, then a stale cache entry.
type ContentService struct {
	resolver    *resolve.Resolver
	cache       Cache
	group       singleflight.Group
	liveTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewContentService creates a content service. cache may be nil.
func NewContentService(
	resolver *resolve.Resolver,
	cache Cache,
	opts Options,
	logger *slog.Logger,
	m *metrics.Metrics,
) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LiveTimeout <= 0 {
		opts.LiveTimeout = DefaultLiveTimeout
	}
	return &ContentService{
		resolver:    resolver,
		cache:       cache,
		liveTimeout: opts.LiveTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// Resolver returns the resolver queries are built from.
func (s *ContentService) Resolver() *resolve.Resolver {
	return s.resolver
}

// Resolve runs q. Concurrent calls for the same key share one resolution.
func Resolve[T any](ctx context.Context, s *ContentService, q resolve.Query[T]) (Result[T], error) {
	key := q.KeyString()

	v, err, shared := s.group.Do(key, func() (any, error) {
		return resolveOnce(ctx, s, q)
	})
	if err != nil {
		return Result[T]{}, err
	}
	if shared {
		s.logger.Debug("resolve shared in-flight result", "key", key)
	}
	return v.(Result[T]), nil
}

func resolveOnce[T any](ctx context.Context, s *ContentService, q resolve.Query[T]) (Result[T], error) {
	key := q.KeyString()
	resource := resourceOf(q)

	cached := s.lookup(ctx, key)
	if cached != nil && !cached.Stale {
		if env, ok := decodeEntry[T](s, key, cached); ok {
			return finish(s, resource, Result[T]{Envelope: env, Source: SourceCache}), nil
		}
	}

	liveCtx, cancel := context.WithTimeout(ctx, s.liveTimeout)
	start := time.Now()
	env, err := q.Fetch(liveCtx)
	cancel()
	s.metrics.ObserveLive(resource, start, err)

	if err == nil {
		if env.Success {
			s.store(ctx, key, env)
		}
		return finish(s, resource, Result[T]{Envelope: env, Source: SourceLive}), nil
	}

	if q.HasFallback() {
		s.logger.Warn("live fetch failed, serving snapshot",
			"key", key,
			"error", err,
		)
		return finish(s, resource, Result[T]{Envelope: *q.Fallback, Source: SourceSnapshot, Stale: true}), nil
	}

	if cached != nil {
		if env, ok := decodeEntry[T](s, key, cached); ok {
			s.logger.Warn("live fetch failed, serving stale cache",
				"key", key,
				"fetched_at", cached.FetchedAt,
				"error", err,
			)
			return finish(s, resource, Result[T]{Envelope: env, Source: SourceCache, Stale: true}), nil
		}
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return Result[T]{}, ctx.Err()
	}
	return Result[T]{}, err
}

func (s *ContentService) lookup(ctx context.Context, key string) *store.Entry {
	if s.cache == nil {
		return nil
	}
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed",
			"key", key,
			"error", err,
		)
		// Continue to fetch fresh
		s.metrics.ObserveCache("error")
		return nil
	}
	switch {
	case entry == nil:
		s.metrics.ObserveCache("miss")
	case entry.Stale:
		s.metrics.ObserveCache("stale")
	default:
		s.metrics.ObserveCache("hit")
	}
	return entry
}

func (s *ContentService) store(ctx context.Context, key string, payload any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload); err != nil {
		s.logger.Warn("failed to cache content",
			"key", key,
			"error", err,
		)
	}
}

func finish[T any](s *ContentService, resource string, r Result[T]) Result[T] {
	s.metrics.ObserveResolve(resource, string(r.Source), r.Stale)
	return r
}

func decodeEntry[T any](s *ContentService, key string, e *store.Entry) (domain.Envelope[T], bool) {
	var env domain.Envelope[T]
	if err := e.Decode(&env); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return env, false
	}
	return env, true
}

func resourceOf[T any](q resolve.Query[T]) string {
	if len(q.Key) == 0 {
		return "unknown"
	}
	return q.Key[0]
}
