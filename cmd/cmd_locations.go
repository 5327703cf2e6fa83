// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/spatial"
	"github.com/jcodagnone/adonde/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Administra la agenda de direcciones",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista las direcciones guardadas",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		locs, err := repo.ListAll()
		if err != nil {
			return fmt.Errorf("listing locations: %w", err)
		}

		a, b, c, d := strings.Repeat("─", 4), strings.Repeat("─", 20), strings.Repeat("─", 44), strings.Repeat("─", 13)
		fmt.Println("Direcciones guardadas:")
		fmt.Printf("╭─%4s─┬─%-20s─┬─%-44s─┬─%-13s╮\n", a, b, c, d)
		fmt.Printf("│ %4s │ %-20s │ %-44s │ %-13s│\n", "Id", "Nombre", "Dirección", "Origen")
		fmt.Printf("├─%4s─┼─%-20s─┼─%-44s─┼─%-13s┤\n", a, b, c, d)
		for _, loc := range locs {
			fmt.Printf("│ %4d │ %-20s │ %-44s │ %-13s│\n",
				loc.ID,
				textutils.Truncate(loc.Name, 20),
				textutils.Truncate(loc.Address, 44),
				loc.Source,
			)
		}
		fmt.Printf("╰─%4s─┴─%-20s─┴─%-44s─┴─%-13s╯\n", a, b, c, d)

		return nil
	},
}

var (
	locationsAddCategory string
	locationsAddPoint    string
)

var locationsAddCmd = &cobra.Command{
	Use:   "add <nombre> <dirección>",
	Short: "Agrega una dirección a la agenda",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		loc := &locations.Location{
			Name:     locations.Sanitize(args[0]),
			Address:  locations.Sanitize(args[1]),
			Category: locationsAddCategory,
			Source:   "manual",
		}

		if locationsAddPoint != "" {
			p, err := spatial.ParsePoint(locationsAddPoint)
			if err != nil {
				return err
			}

			loc.Point = p
		}

		if err := locations.Validate(loc); err != nil {
			return err
		}

		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.Save(loc); err != nil {
			return fmt.Errorf("saving location: %w", err)
		}

		fmt.Printf("Guardada #%d: %s\n", loc.ID, loc.Name)

		return nil
	},
}

var locationsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Elimina una dirección de la agenda",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repo.Delete(id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no location with id %d", id)
			}

			return fmt.Errorf("deleting location: %w", err)
		}

		fmt.Printf("Eliminada #%d\n", id)

		return nil
	},
}

var locationsExportCmd = &cobra.Command{
	Use:   "export <archivo>",
	Short: "Exporta la agenda a un archivo JSON",
	Long:  `Exporta todas las direcciones guardadas a un archivo JSON local. El archivo queda ordenado para minimizar los diffs al versionarlo.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := locations.ExportToJSON(repo, args[0]); err != nil {
			return fmt.Errorf("exporting locations: %w", err)
		}

		count, err := repo.Count()
		if err != nil {
			return fmt.Errorf("counting locations: %w", err)
		}

		fmt.Printf("Exported %s locations to %s\n", textutils.FormatInt(int64(count)), args[0])

		return nil
	},
}

var locationsImportCmd = &cobra.Command{
	Use:   "import <archivo>",
	Short: "Importa direcciones desde un archivo JSON",
	Long: `Importa direcciones desde un archivo JSON con el formato de export. Las
entradas cuya dirección ya existe en la agenda actualizan la fila existente.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0]) // #nosec G304 - filepath is provided by the user
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		var seed locations.SeedData
		if err := json.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("parsing JSON: %w", err)
		}

		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(seed.Locations),
				progressbar.OptionSetDescription("Importing "+filepath.Base(args[0])),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		imported := 0

		for _, loc := range seed.Locations {
			if err := locations.Validate(loc); err != nil {
				return fmt.Errorf("validating %q: %w", loc.Address, err)
			}

			if loc.Source == "" {
				loc.Source = "import"
			}

			if err := repo.Save(loc); err != nil {
				return fmt.Errorf("saving location %q: %w", loc.Address, err)
			}

			imported++

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		fmt.Printf("Imported %s locations from %s\n", textutils.FormatInt(int64(imported)), args[0])

		return nil
	},
}

var locationsNearbyRings int

var locationsNearbyCmd = &cobra.Command{
	Use:   "nearby <lat,lng>",
	Short: "Lista las direcciones guardadas cerca de un punto",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		point, err := spatial.ParsePoint(args[0])
		if err != nil {
			return err
		}

		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		locs, err := repo.Nearby(point, locationsNearbyRings)
		if err != nil {
			return fmt.Errorf("searching nearby: %w", err)
		}

		if len(locs) == 0 {
			fmt.Println("Sin direcciones cerca.")

			return nil
		}

		for _, loc := range locs {
			fmt.Printf("%7.0f m  %s (%s)\n", point.HaversineDistance(loc.Point), loc.Name, loc.Address)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsAddCmd)
	locationsCmd.AddCommand(locationsRmCmd)
	locationsCmd.AddCommand(locationsExportCmd)
	locationsCmd.AddCommand(locationsImportCmd)
	locationsCmd.AddCommand(locationsNearbyCmd)

	locationsAddCmd.Flags().StringVar(
		&locationsAddCategory,
		"category",
		"",
		"Categoría de la dirección (home, work, favorite, other)",
	)
	locationsAddCmd.Flags().StringVar(
		&locationsAddPoint,
		"point",
		"",
		"Coordenadas \"lat,lng\" de la dirección",
	)
	locationsNearbyCmd.Flags().IntVar(
		&locationsNearbyRings,
		"rings",
		1,
		"Cantidad de anillos H3 a revisar alrededor del punto",
	)
}
