// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/utils/textutils"
)

// SavedStore is the slice of the address book this package needs: listing
// for the merged view, exact lookup and save for auto-persistence.
type SavedStore interface {
	List() ([]*locations.Location, error)
	FindByAddress(address string) (*locations.Location, error)
	Save(loc *locations.Location) error
}

// Persister writes committed addresses into the address book in the
// background. Saves are best effort: a commit never waits for one and every
// failure is logged and swallowed.
type Persister struct {
	store         SavedStore
	enabled       bool
	maxNameLength int

	wg sync.WaitGroup
}

// NewPersister creates a persister over the saved-locations store. With
// enabled false every Persist call is a no-op.
func NewPersister(store SavedStore, enabled bool, maxNameLength int) *Persister {
	if maxNameLength <= 0 {
		maxNameLength = 100
	}

	return &Persister{store: store, enabled: enabled, maxNameLength: maxNameLength}
}

// Persist queues a background save of a resolved address. shortLabel seeds
// the location name when present, otherwise the name is derived from the
// address itself. Addresses that already exist under a case-insensitive
// match are left alone.
func (p *Persister) Persist(res *Resolved, shortLabel string) {
	if !p.enabled || res == nil || strings.TrimSpace(res.Address) == "" {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.persist(res, shortLabel)
	}()
}

func (p *Persister) persist(res *Resolved, shortLabel string) {
	existing, err := p.store.FindByAddress(res.Address)
	if err != nil {
		perr := &Error{Kind: ErrorKindPersistence, Message: "checking for existing address", Err: err}
		zap.L().Warn("auto-save skipped", zap.String("address", res.Address), zap.Error(perr))

		return
	}
	if existing != nil {
		zap.L().Debug("auto-save skipped, address already saved",
			zap.String("address", res.Address),
			zap.Int("id", existing.ID),
		)

		return
	}

	name := strings.TrimSpace(shortLabel)
	if name == "" {
		name = locations.DeriveName(res.Address)
	}
	name = textutils.Truncate(name, p.maxNameLength)

	loc := &locations.Location{
		Name:    name,
		Address: res.Address,
		Source:  res.Provider,
		Point:   res.Point,
	}
	if err := p.store.Save(loc); err != nil {
		perr := &Error{Kind: ErrorKindPersistence, Message: "saving resolved address", Err: err}
		zap.L().Warn("auto-save failed", zap.String("address", res.Address), zap.Error(perr))

		return
	}

	zap.L().Debug("auto-saved location", zap.Int("id", loc.ID), zap.String("name", name))
}

// Wait blocks until all queued saves finish. One-shot runs call it before
// exiting so the write lands.
func (p *Persister) Wait() {
	p.wg.Wait()
}
