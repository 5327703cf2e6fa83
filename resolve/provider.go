// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns free-text address input into a committed canonical
// address. It debounces keystrokes, fans searches out to geocoding providers
// with fallback, merges live suggestions with the saved address book, and
// persists chosen addresses opportunistically.
package resolve

import (
	"context"

	"github.com/jcodagnone/adonde/spatial"
)

// Provider names as they appear in Suggestion.Provider and in the address
// book's source column.
const (
	ProviderGoogle    = "google_places"
	ProviderNominatim = "nominatim"
	ProviderSaved     = "saved"
	ProviderManual    = "manual"
)

// Suggestion is one autocomplete candidate from a provider. A result set is
// replaced wholesale on every completed search, never patched.
type Suggestion struct {
	// ID is the provider-scoped place reference, empty when the provider
	// has no detail endpoint to spend it on.
	ID            string         `json:"id,omitempty"`
	DisplayName   string         `json:"display_name"`
	ShortLabel    string         `json:"short_label,omitempty"`
	SecondaryText string         `json:"secondary_text,omitempty"`
	Provider      string         `json:"provider"`
	Point         *spatial.Point `json:"point,omitempty"`
}

// Resolved is the outcome of committing a suggestion or saved entry.
type Resolved struct {
	Address  string         `json:"address"`
	Point    *spatial.Point `json:"point,omitempty"`
	Provider string         `json:"provider"`
}

// Provider serves address suggestions for a partial query.
type Provider interface {
	Name() string

	// Available reports whether the provider can serve requests now.
	Available() bool

	// MinQueryLength is the shortest query worth sending, in runes.
	MinQueryLength() int

	// Suggest returns candidates for the query. sessionToken groups the
	// keystrokes of one picker interaction for provider-side accounting;
	// providers without session semantics ignore it.
	Suggest(ctx context.Context, query, sessionToken string) ([]Suggestion, error)
}

// DetailProvider is a Provider whose suggestions carry a reference that must
// be exchanged for the full formatted address in a second round-trip.
type DetailProvider interface {
	Provider

	// ResolveDetail exchanges a suggestion ID for the formatted address.
	ResolveDetail(ctx context.Context, id, sessionToken string) (*Resolved, error)
}
