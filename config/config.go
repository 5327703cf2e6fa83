// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration from config.yaml and
// ADONDE_* environment variables, with environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	DB        DBConfig        `yaml:"db" mapstructure:"db"`
	Picker    PickerConfig    `yaml:"picker" mapstructure:"picker"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DBConfig configures the DuckDB address book.
type DBConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	Seed string `yaml:"seed" mapstructure:"seed"`
}

// PickerConfig configures the address picker behaviour.
type PickerConfig struct {
	DebounceIntervalMs      int      `yaml:"debounce_interval_ms" mapstructure:"debounce_interval_ms"`
	MinQueryLengthPrimary   int      `yaml:"min_query_length_primary" mapstructure:"min_query_length_primary"`
	MinQueryLengthSecondary int      `yaml:"min_query_length_secondary" mapstructure:"min_query_length_secondary"`
	AutoSave                bool     `yaml:"auto_save" mapstructure:"auto_save"`
	MaxSavedNameLength      int      `yaml:"max_saved_name_length" mapstructure:"max_saved_name_length"`
	Language                string   `yaml:"language" mapstructure:"language"`
	CountryCodes            []string `yaml:"country_codes" mapstructure:"country_codes"`
}

// GoogleConfig holds Google Places API settings. An empty APIKey and KeyName
// means the picker runs without the credentialed provider.
type GoogleConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	KeyName string `yaml:"key_name" mapstructure:"key_name"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NominatimConfig holds Nominatim settings.
type NominatimConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	TraceHTTP bool   `yaml:"trace_http" mapstructure:"trace_http"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.adonde")

	// Environment
	v.SetEnvPrefix("ADONDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a meaningful default still get one so the
	// environment binding picks them up during Unmarshal.
	v.SetDefault("db.path", "adonde.duckdb")
	v.SetDefault("db.seed", "")
	v.SetDefault("picker.debounce_interval_ms", 300)
	v.SetDefault("picker.min_query_length_primary", 2)
	v.SetDefault("picker.min_query_length_secondary", 3)
	v.SetDefault("picker.auto_save", true)
	v.SetDefault("picker.max_saved_name_length", 100)
	v.SetDefault("picker.language", "es")
	v.SetDefault("picker.country_codes", []string{"uy"})
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.key_name", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.rate_per_second", 1.0)
	v.SetDefault("server.listen", "localhost:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.trace_http", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration bounds shared by every command.
func (c *Config) Validate() error {
	if c.Picker.DebounceIntervalMs < 0 {
		return fmt.Errorf("picker.debounce_interval_ms must be >= 0 (got %d)", c.Picker.DebounceIntervalMs)
	}

	if c.Picker.MinQueryLengthPrimary < 1 {
		return fmt.Errorf("picker.min_query_length_primary must be >= 1 (got %d)", c.Picker.MinQueryLengthPrimary)
	}

	if c.Picker.MinQueryLengthSecondary < 1 {
		return fmt.Errorf("picker.min_query_length_secondary must be >= 1 (got %d)", c.Picker.MinQueryLengthSecondary)
	}

	if c.Picker.MaxSavedNameLength < 1 || c.Picker.MaxSavedNameLength > 512 {
		return fmt.Errorf("picker.max_saved_name_length must be between 1 and 512 (got %d)", c.Picker.MaxSavedNameLength)
	}

	if c.Nominatim.RatePerSecond <= 0 {
		return fmt.Errorf("nominatim.rate_per_second must be > 0 (got %f)", c.Nominatim.RatePerSecond)
	}

	if strings.TrimSpace(c.Server.Listen) == "" {
		return errors.New("server.listen can't be empty")
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	zap.ReplaceGlobals(logger)

	return nil
}
