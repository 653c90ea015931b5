// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/recommend"
	"github.com/tomtom215/brewmatch/internal/vector"
)

var _ profile.Source = (*Store)(nil)

// Item is a catalog entry that can be recommended.
type Item struct {
	ID        int64          `json:"id"`
	Mode      analytics.Mode `json:"mode"`
	Title     string         `json:"title"`
	Blurb     string         `json:"blurb,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Vector    vector.Vector  `json:"vector"`
	CreatedAt time.Time      `json:"created_at"`
}

func profileKey(subject string, mode analytics.Mode) []byte {
	return []byte(profileKeyPrefix + subject + ":" + mode.String())
}

func swipePrefix(subject string) []byte {
	return []byte(swipeKeyPrefix + subject + ":")
}

func swipeKey(subject string, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", swipeKeyPrefix, subject, at.UnixNano(), uuid.NewString()))
}

func itemPrefix(mode analytics.Mode) []byte {
	return []byte(itemKeyPrefix + mode.String() + ":")
}

func itemKey(mode analytics.Mode, id int64) []byte {
	return []byte(itemKeyPrefix + mode.String() + ":" + strconv.FormatInt(id, 10))
}

func seenPrefix(subject string, mode analytics.Mode) []byte {
	return []byte(seenKeyPrefix + subject + ":" + mode.String() + ":")
}

// SaveProfile creates or replaces a subject's profile for one mode.
//
//nolint:gocritic // hugeParam: p passed by value for immutability
func (s *Store) SaveProfile(ctx context.Context, p profile.Profile) error {
	if err := checkSubject(p.Subject); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(profileKey(p.Subject, p.Mode), data)
	})
}

// Profile implements profile.Source.
func (s *Store) Profile(ctx context.Context, subject string, mode analytics.Mode) (profile.Profile, error) {
	var p profile.Profile
	if err := checkSubject(subject); err != nil {
		return p, err
	}
	if err := ctx.Err(); err != nil {
		return p, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(subject, mode))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return profile.ErrProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	return p, err
}

// AppendInteraction appends a record to the subject's log. A zero RecordedAt
// is set to the current time.
//
//nolint:gocritic // hugeParam: r passed by value for immutability
func (s *Store) AppendInteraction(ctx context.Context, r analytics.InteractionRecord) error {
	if err := checkSubject(r.Subject); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(swipeKey(r.Subject, r.RecordedAt), data)
	})
}

// Interactions implements profile.Source. Records are returned in time order.
func (s *Store) Interactions(ctx context.Context, subject string) ([]analytics.InteractionRecord, error) {
	if err := checkSubject(subject); err != nil {
		return nil, err
	}

	records := []analytics.InteractionRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := swipePrefix(subject)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r analytics.InteractionRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode interaction %s: %w", it.Item().Key(), err)
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return records, nil
}

// SaveItem creates or replaces a catalog item.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (s *Store) SaveItem(ctx context.Context, item Item) error {
	if err := vector.Validate(item.Vector); err != nil {
		return fmt.Errorf("item %d: %w", item.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(itemKey(item.Mode, item.ID), data)
	})
}

// Item returns one catalog item.
func (s *Store) Item(ctx context.Context, mode analytics.Mode, id int64) (Item, error) {
	var out Item
	if err := ctx.Err(); err != nil {
		return out, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(itemKey(mode, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	return out, err
}

// CandidatePool implements profile.Source.
func (s *Store) CandidatePool(ctx context.Context, mode analytics.Mode) (recommend.CandidatePool, error) {
	pool := make(recommend.CandidatePool)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := itemPrefix(mode)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var item Item
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return fmt.Errorf("decode item %s: %w", it.Item().Key(), err)
			}
			pool[item.ID] = item.Vector
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}
	return pool, nil
}

// MarkSeen adds ids to the subject's seen set for mode.
func (s *Store) MarkSeen(ctx context.Context, subject string, mode analytics.Mode, ids ...int64) error {
	if err := checkSubject(subject); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := string(seenPrefix(subject, mode))
	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Set([]byte(prefix+strconv.FormatInt(id, 10)), nil); err != nil {
				return fmt.Errorf("mark seen %d: %w", id, err)
			}
		}
		return nil
	})
}

// Exclusions implements profile.Source.
func (s *Store) Exclusions(ctx context.Context, subject string, mode analytics.Mode) (recommend.ExclusionSet, error) {
	if err := checkSubject(subject); err != nil {
		return nil, err
	}

	set := make(recommend.ExclusionSet)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := seenPrefix(subject, mode)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			id, err := strconv.ParseInt(string(key[len(prefix):]), 10, 64)
			if err != nil {
				return fmt.Errorf("parse seen key %s: %w", key, err)
			}
			set[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	return set, nil
}
