// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuración de adonde",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Muestra la configuración efectiva",
	Long: `Imprime la configuración resultante de mezclar config.yaml, las variables
de entorno ADONDE_* y los valores por defecto.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		redacted := *cfg
		if redacted.Google.APIKey != "" {
			redacted.Google.APIKey = "[redacted]"
		}

		out, err := yaml.Marshal(&redacted)
		if err != nil {
			return fmt.Errorf("marshaling configuration: %w", err)
		}

		fmt.Print(string(out))

		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
