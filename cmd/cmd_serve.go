// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/resolve"
	"github.com/jcodagnone/adonde/utils/httputils"
	"github.com/jcodagnone/adonde/utils/textutils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the address picker web server (local only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := openDatabase(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.DB.Seed != "" {
			seeded, n, err := locations.SeedIfEmpty(repo, cfg.DB.Seed)
			if err != nil {
				return fmt.Errorf("seeding address book: %w", err)
			}

			if seeded {
				fmt.Printf("🌱 Seeded %s locations from %s\n", textutils.FormatInt(int64(n)), cfg.DB.Seed)
			}
		}

		listen := cfg.Server.Listen
		if serveListen != "" {
			listen = serveListen
		}

		store := locations.NewStore(repo)

		server := resolve.NewServer(resolve.ServerOptions{
			Router:    buildRouter(cmd.Context()),
			Store:     store,
			Persister: resolve.NewPersister(store, cfg.Picker.AutoSave, cfg.Picker.MaxSavedNameLength),
			Listen:    listen,
		})

		fmt.Println("🧭 Address picker server starting...")
		fmt.Printf("📍 API at http://%s/api\n", listen)
		fmt.Println("🔒 Local only - not exposed to internet")

		return server.Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "host:port to listen on (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

// openDatabase opens the DuckDB address book, creating the parent directory
// and the schema when missing.
func openDatabase(path string) (*sql.DB, locations.Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := locations.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

// buildRouter assembles the provider chain from the configuration: Google
// Places first when a key can be found, Nominatim as the keyless fallback.
func buildRouter(ctx context.Context) *resolve.Router {
	httpClient := newProviderHTTPClient()

	apiKey := cfg.Google.APIKey
	if apiKey == "" && cfg.Google.KeyName != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		key, err := resolve.LookupAPIKey(lookupCtx, cfg.Google.KeyName)
		if err != nil {
			zap.L().Warn("google api key lookup failed, continuing without places",
				zap.String("key_name", cfg.Google.KeyName),
				zap.Error(err))
		} else {
			apiKey = key
		}
	}

	google := resolve.NewGooglePlaces(resolve.GooglePlacesOptions{
		APIKey:         apiKey,
		BaseURL:        cfg.Google.BaseURL,
		Language:       cfg.Picker.Language,
		CountryCodes:   cfg.Picker.CountryCodes,
		MinQueryLength: cfg.Picker.MinQueryLengthPrimary,
		HTTPClient:     httpClient,
	})

	nominatim := resolve.NewNominatim(resolve.NominatimOptions{
		BaseURL:        cfg.Nominatim.BaseURL,
		UserAgent:      userAgent(),
		Language:       cfg.Picker.Language,
		CountryCodes:   cfg.Picker.CountryCodes,
		MinQueryLength: cfg.Picker.MinQueryLengthSecondary,
		RatePerSecond:  cfg.Nominatim.RatePerSecond,
		HTTPClient:     httpClient,
	})

	return resolve.NewRouter(google, nominatim)
}

func userAgent() string {
	return fmt.Sprintf("adonde/%s (+https://github.com/jcodagnone/adonde)", Version)
}

// newProviderHTTPClient builds the HTTP client shared by both providers,
// dumping traffic to stderr when log.trace_http is set.
func newProviderHTTPClient() *http.Client {
	var transport http.RoundTripper = &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	if cfg.Log.TraceHTTP {
		transport = &httputils.LoggingRoundTripper{
			Writer:    os.Stderr,
			DumpBody:  true,
			Transport: transport,
		}
	}

	transport = &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent(),
			"Accept":     "*/*",
		},
		Transport: transport,
	}

	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}
}
