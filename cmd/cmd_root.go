// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/adonde/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

// cfg holds the configuration loaded by PersistentPreRunE, shared by every
// subcommand.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "adonde",
	Short: "agenda de direcciones con autocompletado",
	Long: `
adonde mantiene una agenda local de direcciones y la combina con los servicios
de autocompletado de Google Places y Nominatim. Las direcciones elegidas se
guardan en la agenda para la próxima búsqueda.
`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if err := config.InitLogger(c.Log); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		cfg = c

		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
