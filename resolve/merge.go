// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/utils/textutils"
)

// Item is one row of the merged picker list. Exactly one of Saved and
// Suggestion is set.
type Item struct {
	Saved      *locations.Location `json:"saved,omitempty"`
	Suggestion *Suggestion         `json:"suggestion,omitempty"`
}

// Display returns the text a picker renders for the row.
func (it Item) Display() string {
	if it.Saved != nil {
		if it.Saved.Name == "" {
			return it.Saved.Address
		}

		return fmt.Sprintf("%s (%s)", it.Saved.Name, it.Saved.Address)
	}

	if it.Suggestion != nil {
		return it.Suggestion.DisplayName
	}

	return ""
}

// Merge builds the picker list for a query: saved locations whose name or
// address contains the folded query come first in their stored order, then
// the live suggestions in provider order, indexed zero-based over the
// concatenation. An empty (or blank) query keeps every saved location and
// never includes suggestions.
//
// No de-duplication happens across the two sources. An address that is both
// saved and freshly suggested renders twice; the rows commit differently.
func Merge(query string, saved []*locations.Location, suggestions []Suggestion) []Item {
	folded := textutils.Fold(query)

	items := make([]Item, 0, len(saved)+len(suggestions))

	for _, loc := range saved {
		if folded == "" || textutils.ContainsFold(loc.Name, query) || textutils.ContainsFold(loc.Address, query) {
			items = append(items, Item{Saved: loc})
		}
	}

	if folded == "" {
		return items
	}

	for i := range suggestions {
		items = append(items, Item{Suggestion: &suggestions[i]})
	}

	return items
}
