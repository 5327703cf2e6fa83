// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/adonde/resolve"
	"github.com/jcodagnone/adonde/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Interactuar con los proveedores de autocompletado",
	Long: `Lee una consulta por línea, e imprime en stdout la consulta seguida del
proveedor que respondió y sus sugerencias crudas.

$ echo "av italia 3030" | adonde debug suggest
av italia 3030	google_places	[{"id":"ChIJ…","display_name":"Av. Italia 3030, Montevideo"}]
	`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		router := buildRouter(cmd.Context())
		tokens := resolve.NewSessionTokens()

		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Ingrese consultas a autocompletar, una por línea…")
		}
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			query := scanner.Text()
			provider, suggestions := router.Search(cmd.Context(), query, tokens.Current())
			if provider == "" {
				provider = "-"
			}
			if s, err := json.Marshal(suggestions); err == nil {
				fmt.Printf("%s\t%s\t%s\n", query, provider, s)
			} else {
				log.Fatal(err)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}

		return nil
	},
}

var debugFoldCmd = &cobra.Command{
	Use:   "fold",
	Short: "Muestra la clave de comparación de un texto",
	Long: `Lee un texto por línea, e imprime en stdout el texto seguido de la clave
con la que se comparan consultas y direcciones guardadas.

$ echo "José Ellauri 468" | adonde debug fold
José Ellauri 468		jose ellauri 468
	`,
	Run: func(_ *cobra.Command, _ []string) {
		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Ingrese textos a normalizar, uno por línea…")
		}
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Printf("%s\t\t%s\n", line, textutils.Fold(line))
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugSuggestCmd)
	debugCmd.AddCommand(debugFoldCmd)
}
