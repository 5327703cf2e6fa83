// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"

	"go.uber.org/zap"
)

// Router tries providers in order until one answers. Provider failures are
// logged and absorbed; the caller only ever sees a suggestion list, possibly
// empty. With a credentialed Google provider first and Nominatim second this
// yields the primary-with-transparent-fallback policy.
type Router struct {
	providers []Provider
}

// NewRouter creates a router over providers in priority order.
func NewRouter(providers ...Provider) *Router {
	return &Router{providers: providers}
}

// MinQueryLength returns the threshold of the provider a search would reach
// first, so short queries are filtered before any network is touched.
func (r *Router) MinQueryLength() int {
	for _, p := range r.providers {
		if p.Available() {
			return p.MinQueryLength()
		}
	}

	return 3
}

// Search runs the query through the provider chain and returns the name of
// the provider that answered plus its suggestions. Every failure falls
// through to the next provider; total failure returns an empty list.
func (r *Router) Search(ctx context.Context, query, sessionToken string) (string, []Suggestion) {
	for _, p := range r.providers {
		if !p.Available() {
			continue
		}

		suggestions, err := p.Suggest(ctx, query, sessionToken)
		if err != nil {
			zap.L().Debug("provider search failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err),
			)

			if ctx.Err() != nil {
				// The caller is gone; skip the fallback.
				return "", nil
			}

			continue
		}

		return p.Name(), suggestions
	}

	return "", nil
}

// Detail returns the named provider's detail capability, or nil when the
// provider is unknown, unavailable, or has no detail endpoint.
func (r *Router) Detail(name string) DetailProvider {
	for _, p := range r.providers {
		if p.Name() != name {
			continue
		}

		if dp, ok := p.(DetailProvider); ok && p.Available() {
			return dp
		}

		return nil
	}

	return nil
}
