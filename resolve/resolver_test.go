// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/spatial"
)

func TestResolverSavedRowSkipsNetwork(t *testing.T) {
	primary := &fakeDetailProvider{fakeProvider: fakeProvider{name: ProviderGoogle, available: true}}
	tokens := NewSessionTokens()
	before := tokens.Current()

	r := NewResolver(NewRouter(primary), tokens)

	saved := &locations.Location{
		Name:    "Casa",
		Address: "José Ellauri 468, Montevideo",
		Point:   &spatial.Point{Lat: -34.9211, Lng: -56.1560},
	}

	res := r.Resolve(context.Background(), Item{Saved: saved})

	assert.Equal(t, "José Ellauri 468, Montevideo", res.Address)
	assert.Equal(t, ProviderSaved, res.Provider)
	assert.Equal(t, saved.Point, res.Point)

	assert.Equal(t, 0, primary.callCount())
	assert.Equal(t, 0, primary.detailCallCount())
	assert.Equal(t, before, tokens.Current(), "no detail attempt, no rotation")
}

func TestResolverDetailSuccessRotatesToken(t *testing.T) {
	primary := &fakeDetailProvider{
		fakeProvider: fakeProvider{name: ProviderGoogle, available: true},
		detail: func(_ context.Context, _, _ string) (*Resolved, error) {
			return &Resolved{
				Address:  "Av. 18 de Julio 1234, 11100 Montevideo, Uruguay",
				Point:    &spatial.Point{Lat: -34.9055, Lng: -56.1914},
				Provider: ProviderGoogle,
			}, nil
		},
	}
	tokens := NewSessionTokens()
	before := tokens.Current()

	r := NewResolver(NewRouter(primary), tokens)

	sug := &Suggestion{ID: "place-1", DisplayName: "Av. 18 de Julio 1234", Provider: ProviderGoogle}
	res := r.Resolve(context.Background(), Item{Suggestion: sug})

	assert.Equal(t, "Av. 18 de Julio 1234, 11100 Montevideo, Uruguay", res.Address)
	require.NotNil(t, res.Point)

	// The detail call spends the session's token, then the session closes.
	require.Equal(t, 1, primary.detailCallCount())
	assert.Equal(t, fakeCall{query: "place-1", token: before}, primary.detailCalls[0])
	assert.NotEqual(t, before, tokens.Current())
}

func TestResolverDetailFailureFailsOpen(t *testing.T) {
	primary := &fakeDetailProvider{
		fakeProvider: fakeProvider{name: ProviderGoogle, available: true},
		detail: func(_ context.Context, _, _ string) (*Resolved, error) {
			return nil, &Error{Kind: ErrorKindNetwork, Provider: ProviderGoogle, Message: "place detail request failed"}
		},
	}
	tokens := NewSessionTokens()
	before := tokens.Current()

	r := NewResolver(NewRouter(primary), tokens)

	sug := &Suggestion{
		ID:          "place-1",
		DisplayName: "Bvar. España 2633, Montevideo",
		Point:       &spatial.Point{Lat: -34.9113, Lng: -56.1689},
		Provider:    ProviderGoogle,
	}
	res := r.Resolve(context.Background(), Item{Suggestion: sug})

	// The display text commits anyway.
	assert.Equal(t, "Bvar. España 2633, Montevideo", res.Address)
	assert.Equal(t, sug.Point, res.Point)
	assert.Equal(t, ProviderGoogle, res.Provider)

	assert.NotEqual(t, before, tokens.Current(), "failed attempts rotate too")
}

func TestResolverSecondarySuggestionCommitsDisplayText(t *testing.T) {
	primary := &fakeDetailProvider{fakeProvider: fakeProvider{name: ProviderGoogle, available: true}}
	secondary := &fakeProvider{name: ProviderNominatim, available: true}
	tokens := NewSessionTokens()
	before := tokens.Current()

	r := NewResolver(NewRouter(primary, secondary), tokens)

	sug := &Suggestion{
		ID:          "287419573",
		DisplayName: "Teatro Solís, Ciudad Vieja, Montevideo, Uruguay",
		Provider:    ProviderNominatim,
	}
	res := r.Resolve(context.Background(), Item{Suggestion: sug})

	assert.Equal(t, "Teatro Solís, Ciudad Vieja, Montevideo, Uruguay", res.Address)
	assert.Equal(t, ProviderNominatim, res.Provider)

	assert.Equal(t, 0, primary.detailCallCount())
	assert.Equal(t, before, tokens.Current())
}

func TestResolverSuggestionWithoutRefSkipsDetail(t *testing.T) {
	primary := &fakeDetailProvider{fakeProvider: fakeProvider{name: ProviderGoogle, available: true}}
	tokens := NewSessionTokens()
	before := tokens.Current()

	r := NewResolver(NewRouter(primary), tokens)

	sug := &Suggestion{DisplayName: "Rambla República del Perú", Provider: ProviderGoogle}
	res := r.Resolve(context.Background(), Item{Suggestion: sug})

	assert.Equal(t, "Rambla República del Perú", res.Address)
	assert.Equal(t, 0, primary.detailCallCount())
	assert.Equal(t, before, tokens.Current())
}

func TestResolverEmptyItem(t *testing.T) {
	r := NewResolver(NewRouter(), NewSessionTokens())

	res := r.Resolve(context.Background(), Item{})

	assert.Empty(t, res.Address)
	assert.Equal(t, ProviderManual, res.Provider)
}
