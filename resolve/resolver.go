// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"

	"go.uber.org/zap"
)

// Resolver turns a chosen picker row into the final address. It never
// fails: when detail resolution errors out, the suggestion's display text is
// committed as a best effort instead.
type Resolver struct {
	router *Router
	tokens *SessionTokens
}

// NewResolver creates a resolver over the router's providers.
func NewResolver(router *Router, tokens *SessionTokens) *Resolver {
	return &Resolver{router: router, tokens: tokens}
}

// Resolve resolves a merged list row.
//
// Saved rows are already canonical and resolve without touching the network.
// Suggestion rows from a provider without a detail endpoint commit their
// display text directly. Suggestion rows from a detail-capable provider cost
// one detail round-trip keyed by the suggestion reference and the current
// session token; the token is rotated after the attempt no matter how it
// went, closing the billing session this selection belongs to.
func (r *Resolver) Resolve(ctx context.Context, it Item) *Resolved {
	if it.Saved != nil {
		return &Resolved{
			Address:  it.Saved.Address,
			Point:    it.Saved.Point,
			Provider: ProviderSaved,
		}
	}

	sug := it.Suggestion
	if sug == nil {
		return &Resolved{Provider: ProviderManual}
	}

	fallback := &Resolved{
		Address:  sug.DisplayName,
		Point:    sug.Point,
		Provider: sug.Provider,
	}

	dp := r.router.Detail(sug.Provider)
	if dp == nil || sug.ID == "" {
		return fallback
	}

	defer r.tokens.Rotate()

	resolved, err := dp.ResolveDetail(ctx, sug.ID, r.tokens.Current())
	if err != nil {
		zap.L().Warn("detail resolution failed, committing display text",
			zap.String("provider", sug.Provider),
			zap.String("ref", sug.ID),
			zap.Error(err),
		)

		return fallback
	}

	return resolved
}
