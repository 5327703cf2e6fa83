// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"errors"
	"fmt"
	"strings"
)

// validCategories holds the accepted address book categories.
var validCategories = map[string]bool{
	"home":     true,
	"work":     true,
	"favorite": true,
	"other":    true,
}

// validSources holds the accepted provenance values for a saved location.
var validSources = map[string]bool{
	"manual":        true,
	"google_places": true,
	"nominatim":     true,
	"import":        true,
}

const (
	maxNameLength    = 512
	maxAddressLength = 1024
)

// validateCoordinates checks global coordinate bounds.
func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got: %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got: %f)", lng)
	}

	return nil
}

// Validate checks that a Location carries data the repository will accept.
func Validate(loc *Location) error {
	if loc == nil {
		return errors.New("location can't be nil")
	}

	if strings.TrimSpace(loc.Address) == "" {
		return errors.New("address can't be empty")
	}

	if len(loc.Address) > maxAddressLength {
		return fmt.Errorf("address too long (maximum %d characters)", maxAddressLength)
	}

	if len(loc.Name) > maxNameLength {
		return fmt.Errorf("name too long (maximum %d characters)", maxNameLength)
	}

	if loc.Point != nil {
		if err := validateCoordinates(loc.Point.Lat, loc.Point.Lng); err != nil {
			return fmt.Errorf("invalid coordinates: %w", err)
		}
	}

	if loc.Category != "" && !validCategories[loc.Category] {
		return fmt.Errorf("invalid category: %s", loc.Category)
	}

	if loc.Source != "" && !validSources[loc.Source] {
		return fmt.Errorf("invalid source: %s", loc.Source)
	}

	return nil
}

// Sanitize trims surrounding whitespace from a user supplied field.
func Sanitize(s string) string {
	return strings.TrimSpace(s)
}
