// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/resolve"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [consulta]",
	Short: "Resuelve una dirección y la guarda en la agenda",
	Long: `Con una consulta busca en la agenda y en los proveedores de autocompletado,
muestra los candidatos y resuelve el elegido a una dirección completa. Sin
una terminal interactiva toma el primer candidato, o el texto tal cual
cuando no hay ninguno.

Sin consulta abre una sesión interactiva. Cada línea reemplaza la consulta;
los comandos empiezan con dos puntos:

  :n  selecciona el candidato siguiente
  :p  selecciona el anterior
  :c  confirma la selección, o el texto tal cual sin selección
  :x  cierra la lista de candidatos
  :q  termina la sesión
`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if !isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New("a query is required when stdin is not a terminal")
			}

			return runInteractiveSession(cmd)
		}

		return resolveOnce(cmd, strings.TrimSpace(strings.Join(args, " ")))
	},
}

// resolveOnce searches, lets the user pick a candidate and resolves it.
func resolveOnce(cmd *cobra.Command, query string) error {
	db, repo, err := openDatabase(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := locations.NewStore(repo)
	router := buildRouter(cmd.Context())
	tokens := resolve.NewSessionTokens()

	saved, err := store.List()
	if err != nil {
		return fmt.Errorf("listing saved locations: %w", err)
	}

	var suggestions []resolve.Suggestion
	if utf8.RuneCountInString(query) >= router.MinQueryLength() {
		_, suggestions = router.Search(cmd.Context(), query, tokens.Current())
	}

	items := resolve.Merge(query, saved, suggestions)

	item, err := chooseItem(items, query)
	if err != nil {
		return err
	}

	var res *resolve.Resolved
	var shortLabel string

	if item == nil {
		res = &resolve.Resolved{Address: query, Provider: resolve.ProviderManual}
	} else {
		if item.Suggestion != nil {
			shortLabel = item.Suggestion.ShortLabel
		}

		res = resolve.NewResolver(router, tokens).Resolve(cmd.Context(), *item)
	}

	if res.Provider != resolve.ProviderSaved {
		persister := resolve.NewPersister(store, cfg.Picker.AutoSave, cfg.Picker.MaxSavedNameLength)
		persister.Persist(res, shortLabel)
		persister.Wait()
	}

	printResolved(res)

	return nil
}

// runInteractiveSession drives the picker coordinator from stdin.
func runInteractiveSession(cmd *cobra.Command) error {
	db, repo, err := openDatabase(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := locations.NewStore(repo)
	persister := resolve.NewPersister(store, cfg.Picker.AutoSave, cfg.Picker.MaxSavedNameLength)

	co := resolve.NewCoordinator(resolve.CoordinatorOptions{
		Router:           buildRouter(cmd.Context()),
		Store:            store,
		Persister:        persister,
		DebounceInterval: time.Duration(cfg.Picker.DebounceIntervalMs) * time.Millisecond,
		Callbacks: resolve.Callbacks{
			OnResults: printItems,
			OnCommit: func(res *resolve.Resolved) {
				fmt.Printf("✔ %s (%s)\n", res.Address, res.Provider)
			},
			OnClose: func() {
				fmt.Println("(lista cerrada)")
			},
		},
	})
	defer func() {
		co.Close()
		persister.Wait()
	}()

	fmt.Fprintln(os.Stderr, "Escriba una dirección; :n/:p navegan, :c confirma, :q sale…")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch line {
		case ":q":
			return nil
		case ":n":
			printSelection(co, co.Next())
		case ":p":
			printSelection(co, co.Previous())
		case ":c":
			co.Commit()
		case ":x":
			co.Cancel()
		default:
			co.SetQuery(line)
		}
	}

	return scanner.Err()
}

// chooseItem shows the merged candidates and reads a selection. It returns
// nil when the raw query should be committed as typed.
func chooseItem(items []resolve.Item, query string) (*resolve.Item, error) {
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "Sin candidatos; se usa el texto tal cual.")

		return nil, nil
	}

	printItems(items)

	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return &items[0], nil
	}

	fmt.Fprintf(os.Stderr, "Seleccione 1-%d (Enter usa %q): ", len(items), query)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return nil, scanner.Err()
	}

	choice := strings.TrimSpace(scanner.Text())
	if choice == "" {
		return nil, nil
	}

	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(items) {
		return nil, fmt.Errorf("invalid selection %q", choice)
	}

	return &items[idx-1], nil
}

func printItems(items []resolve.Item) {
	if len(items) == 0 {
		fmt.Println("(sin resultados)")

		return
	}

	for i, it := range items {
		marker := " "
		if it.Saved != nil {
			marker = "★"
		}

		fmt.Printf("%2d %s %s\n", i+1, marker, it.Display())
	}
}

// printSelection echoes the row the cursor landed on. The list may have
// been rebuilt since the move, so the index is checked again.
func printSelection(co *resolve.Coordinator, idx int) {
	if idx < 0 {
		fmt.Println("→ (sin selección)")

		return
	}

	if items := co.Items(); idx < len(items) {
		fmt.Printf("→ %s\n", items[idx].Display())
	}
}

func printResolved(res *resolve.Resolved) {
	fmt.Printf("📍 %s\n", res.Address)
	if res.Point != nil {
		fmt.Printf("   %.6f,%.6f\n", res.Point.Lat, res.Point.Lng)
	}
	fmt.Printf("   (%s)\n", res.Provider)
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
