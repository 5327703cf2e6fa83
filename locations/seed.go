// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string      `json:"version"`
	LastUpdated time.Time   `json:"last_updated"`
	Locations   []*Location `json:"locations"`
}

// ExportToJSON exports the whole address book to a JSON file.
func ExportToJSON(repo Repository, filepath string) error {
	locs, err := repo.ListAll()
	if err != nil {
		return fmt.Errorf("listing locations: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Locations:   locs,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(filepath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// ImportFromJSON imports locations from a JSON file. Entries whose address
// folds to an already saved one update that row, so imports are idempotent.
func ImportFromJSON(repo Repository, filepath string) (int, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	imported := 0

	for _, loc := range seed.Locations {
		if err := Validate(loc); err != nil {
			return imported, fmt.Errorf("validating %q: %w", loc.Address, err)
		}

		if loc.Source == "" {
			loc.Source = "import"
		}

		if err := repo.Save(loc); err != nil {
			return imported, fmt.Errorf("saving location %q: %w", loc.Address, err)
		}

		imported++
	}

	return imported, nil
}

// SeedIfEmpty seeds the address book from a JSON file if no locations exist.
func SeedIfEmpty(repo Repository, filepath string) (bool, int, error) {
	count, err := repo.Count()
	if err != nil {
		return false, 0, fmt.Errorf("counting locations: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}
	// Database is empty, try to seed
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		// No seed file exists, that's okay
		return false, 0, nil
	}

	imported, err := ImportFromJSON(repo, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}
