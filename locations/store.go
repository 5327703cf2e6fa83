// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"sync"
)

// Store serves the address book from an in-memory cache so that every
// keystroke of the picker can filter saved entries without touching DuckDB.
// Mutations go through the store and invalidate the cache; the next List
// reloads from the repository.
type Store struct {
	repo Repository

	mu     sync.Mutex
	cache  []*Location
	loaded bool
	subs   []chan struct{}
}

// NewStore creates a Store over repo. The cache starts cold and fills on the
// first List call.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Repo exposes the underlying repository for queries the cache does not
// cover, such as Nearby or Count.
func (s *Store) Repo() Repository {
	return s.repo
}

// List returns the saved locations ordered by name. Callers receive a copy
// of the cached slice and may keep it across invalidations.
func (s *Store) List() ([]*Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		locs, err := s.repo.ListAll()
		if err != nil {
			return nil, err
		}

		s.cache = locs
		s.loaded = true
	}

	out := make([]*Location, len(s.cache))
	copy(out, s.cache)

	return out, nil
}

// FindByAddress looks up a saved location by folded address. It always hits
// the repository so the exact match sees concurrent writes.
func (s *Store) FindByAddress(address string) (*Location, error) {
	return s.repo.FindByAddress(address)
}

// Save persists loc and invalidates the cache.
func (s *Store) Save(loc *Location) error {
	if err := s.repo.Save(loc); err != nil {
		return err
	}

	s.Invalidate()

	return nil
}

// Delete removes the location with the given id and invalidates the cache.
func (s *Store) Delete(id int) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.Invalidate()

	return nil
}

// Invalidate drops the cached list and notifies subscribers. Safe to call
// from any goroutine.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = nil
	s.loaded = false

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a tick after every invalidation.
// Slow receivers miss ticks instead of blocking writers. Subscriptions last
// for the life of the store.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)

	return ch
}
