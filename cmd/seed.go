// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/jcodagnone/adonde/locations"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seeds the address book with data from cmd/testdata/seed.json",
		RunE: func(_ *cobra.Command, _ []string) error {
			return seedDatabase(cfg.DB.Path)
		},
	}
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(dbPath string) error {
	// remove old db if it exists
	_ = os.Remove(dbPath)
	_ = os.Remove(dbPath + ".wal")

	db, repo, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	imported, err := locations.ImportFromJSON(repo, "cmd/testdata/seed.json")
	if err != nil {
		return fmt.Errorf("importing seed data: %w", err)
	}

	fmt.Printf("Database seeded successfully with %d locations.\n", imported)

	return nil
}
