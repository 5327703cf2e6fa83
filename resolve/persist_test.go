// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/spatial"
	"github.com/jcodagnone/adonde/utils/textutils"
)

// fakeSavedStore is an in-memory SavedStore with the same folded exact-match
// semantics as the real one.
type fakeSavedStore struct {
	mu        sync.Mutex
	locs      []*locations.Location
	nextID    int
	listErr   error
	findErr   error
	saveErr   error
	saveCalls int
}

func (s *fakeSavedStore) List() ([]*locations.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}

	out := make([]*locations.Location, len(s.locs))
	copy(out, s.locs)

	return out, nil
}

func (s *fakeSavedStore) FindByAddress(address string) (*locations.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}

	for _, loc := range s.locs {
		if textutils.EqualFold(loc.Address, address) {
			return loc, nil
		}
	}

	return nil, nil
}

func (s *fakeSavedStore) Save(loc *locations.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}

	s.nextID++
	loc.ID = s.nextID
	s.locs = append(s.locs, loc)

	return nil
}

func (s *fakeSavedStore) saved() []*locations.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*locations.Location, len(s.locs))
	copy(out, s.locs)

	return out
}

func (s *fakeSavedStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveCalls
}

func TestPersisterSavesResolvedAddress(t *testing.T) {
	store := &fakeSavedStore{}
	p := NewPersister(store, true, 100)

	res := &Resolved{
		Address:  "José Ellauri 468, 11300 Montevideo, Uruguay",
		Point:    &spatial.Point{Lat: -34.9211, Lng: -56.1560},
		Provider: ProviderGoogle,
	}
	p.Persist(res, "José Ellauri 468")
	p.Wait()

	saved := store.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "José Ellauri 468", saved[0].Name)
	assert.Equal(t, "José Ellauri 468, 11300 Montevideo, Uruguay", saved[0].Address)
	assert.Equal(t, ProviderGoogle, saved[0].Source)
	assert.Equal(t, res.Point, saved[0].Point)
}

func TestPersisterDerivesNameFromAddress(t *testing.T) {
	store := &fakeSavedStore{}
	p := NewPersister(store, true, 100)

	p.Persist(&Resolved{Address: "Bvar. España 2633, Montevideo, Uruguay", Provider: ProviderNominatim}, "")
	p.Wait()

	saved := store.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "Bvar. España 2633", saved[0].Name)
}

func TestPersisterTruncatesLongNames(t *testing.T) {
	store := &fakeSavedStore{}
	p := NewPersister(store, true, 10)

	p.Persist(&Resolved{Address: "Avenida General Fructuoso Rivera 3245, Montevideo", Provider: ProviderNominatim}, "")
	p.Wait()

	saved := store.saved()
	require.Len(t, saved, 1)
	name := []rune(saved[0].Name)
	assert.Len(t, name, 10)
	assert.Equal(t, '…', name[9])
}

func TestPersisterSkipsExistingAddress(t *testing.T) {
	store := &fakeSavedStore{locs: []*locations.Location{
		{ID: 1, Name: "Casa", Address: "josé ellauri 468, montevideo"},
	}}
	p := NewPersister(store, true, 100)

	// Same address up to case and accents.
	p.Persist(&Resolved{Address: "José Ellauri 468, Montevideo", Provider: ProviderGoogle}, "")
	p.Wait()

	assert.Equal(t, 0, store.saveCount())
	assert.Len(t, store.saved(), 1)
}

func TestPersisterDisabled(t *testing.T) {
	store := &fakeSavedStore{}
	p := NewPersister(store, false, 100)

	p.Persist(&Resolved{Address: "Av. Italia 2552, Montevideo", Provider: ProviderGoogle}, "")
	p.Wait()

	assert.Equal(t, 0, store.saveCount())
}

func TestPersisterSkipsBlankAddress(t *testing.T) {
	store := &fakeSavedStore{}
	p := NewPersister(store, true, 100)

	p.Persist(&Resolved{Address: "   ", Provider: ProviderManual}, "")
	p.Persist(nil, "")
	p.Wait()

	assert.Equal(t, 0, store.saveCount())
}

func TestPersisterSwallowsSaveFailure(t *testing.T) {
	store := &fakeSavedStore{saveErr: errors.New("disk full")}
	p := NewPersister(store, true, 100)

	p.Persist(&Resolved{Address: "Av. Italia 2552, Montevideo", Provider: ProviderGoogle}, "")
	p.Wait()

	assert.Equal(t, 1, store.saveCount())
	assert.Empty(t, store.saved())
}

func TestPersisterSwallowsLookupFailure(t *testing.T) {
	store := &fakeSavedStore{findErr: errors.New("db closed")}
	p := NewPersister(store, true, 100)

	p.Persist(&Resolved{Address: "Av. Italia 2552, Montevideo", Provider: ProviderGoogle}, "")
	p.Wait()

	assert.Equal(t, 0, store.saveCount())
}
