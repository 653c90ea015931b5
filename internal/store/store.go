// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

// Package store persists profiles, the interaction log, the item catalog and
// per-subject seen sets in BadgerDB. It implements profile.Source.
//
// Key layout:
//
//	profile:{subject}:{mode}                 -> profile.Profile (JSON)
//	swipe:{subject}:{unix_nano}:{uuid}       -> analytics.InteractionRecord (JSON)
//	item:{mode}:{id}                         -> Item (JSON)
//	seen:{subject}:{mode}:{id}               -> empty
//
// Interaction keys carry a zero-padded timestamp so a prefix scan returns a
// subject's log in time order.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Key prefixes for BadgerDB storage
const (
	profileKeyPrefix = "profile:"
	swipeKeyPrefix   = "swipe:"
	itemKeyPrefix    = "item:"
	seenKeyPrefix    = "seen:"
)

var (
	// ErrItemNotFound is returned when an item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidSubject is returned for subjects that cannot form a key.
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store is closed")
)

// Config contains BadgerDB settings.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	// Default: ./data/brewmatch
	Path string `koanf:"path"`

	// InMemory keeps everything in memory. Intended for tests and demos.
	// Default: false
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every write.
	// Default: false
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is how often value log garbage collection runs.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the discard ratio passed to RunValueLogGC.
	// Default: 0.5
	GCRatio float64 `koanf:"gc_ratio"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Path:       "./data/brewmatch",
		GCInterval: 10 * time.Minute,
		GCRatio:    0.5,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if c.GCInterval <= 0 {
		return fmt.Errorf("store.gc_interval must be positive, got %s", c.GCInterval)
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("store.gc_ratio must be in (0, 1), got %v", c.GCRatio)
	}
	return nil
}

// Store is a BadgerDB-backed persistence layer. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens (or creates) the database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("store opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	s.logger.Info().Msg("closing store")
	return s.db.Close()
}

// Ping reports whether the store can serve requests.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// RunGC runs value log garbage collection until there is nothing to rewrite.
func (s *Store) RunGC() error {
	if s.cfg.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Serve runs periodic garbage collection until ctx is done. It implements
// suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Store) String() string {
	return "badger-store"
}

func checkSubject(subject string) error {
	if subject == "" || strings.ContainsRune(subject, ':') {
		return fmt.Errorf("%w: %q", ErrInvalidSubject, subject)
	}
	return nil
}
