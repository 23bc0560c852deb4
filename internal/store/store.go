// Package store persists live content API responses in Badger so the query
// runtime can serve them again without a network call.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	// DefaultTTL is how long an entry counts as fresh.
	DefaultTTL = 5 * time.Minute
	// DefaultRetention is how long Badger keeps an entry before evicting it.
	// Entries past TTL but within retention are served as stale.
	DefaultRetention = 24 * time.Hour
)

// Options configures the cache.
type Options struct {
	Path      string // directory for the database; ignored when InMemory
	InMemory  bool
	TTL       time.Duration
	Retention time.Duration
}

// Store wraps a Badger database instance.
type Store struct {
	db        *badger.DB
	logger    *slog.Logger
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// Open opens (or creates) the cache.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil            // Disable Badger's internal logging
	bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:        db,
		logger:    logger,
		ttl:       opts.TTL,
		retention: opts.Retention,
		now:       time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.retention < s.ttl {
		s.retention = max(DefaultRetention, s.ttl)
	}

	if logger != nil {
		logger.Info("Content cache opened", "path", opts.Path, "in_memory", opts.InMemory, "ttl", s.ttl)
	}
	return s, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Closing content cache")
	}
	return s.db.Close()
}

// TTL returns the freshness window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Ping checks the database accepts reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("content cache closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}
