// Package container wires the mark console components and owns their lifecycle.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Session store configuration
	Session SessionConfig

	// Catalog configuration
	Catalog CatalogConfig

	// Label bundle configuration
	I18n I18nConfig

	// Journal export configuration
	Export ExportConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a writer waits on a locked database
	BusyTimeout time.Duration

	// MigrationsDir replaces the embedded migrations when set
	MigrationsDir string
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	// IdleTimeout closes sessions nobody touched for this long; zero keeps them
	IdleTimeout time.Duration

	// CleanupInterval is how often expired sessions are swept
	CleanupInterval time.Duration
}

// CatalogConfig holds action catalog settings.
type CatalogConfig struct {
	// OptionsPath is an optional YAML document overriding option sets
	OptionsPath string

	// SuggestionLimit caps search suggestions
	SuggestionLimit int
}

// I18nConfig holds label bundle settings.
type I18nConfig struct {
	DefaultLanguage string
	BundlePath      string
}

// ExportConfig holds journal export settings.
type ExportConfig struct {
	// OutputDir receives workbooks written by ExportToFile
	OutputDir string
}

// Validate checks the settings the container cannot start without.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.I18n.DefaultLanguage == "" {
		return fmt.Errorf("default language is required")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export output directory is required")
	}
	if c.Catalog.SuggestionLimit < 0 {
		return fmt.Errorf("suggestion limit must not be negative")
	}
	return nil
}

// DefaultConfig returns a configuration suitable for local runs and tests.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/markconsole.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			BusyTimeout:  5 * time.Second,
		},
		Session: SessionConfig{
			IdleTimeout:     30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Catalog: CatalogConfig{
			SuggestionLimit: 10,
		},
		I18n: I18nConfig{
			DefaultLanguage: "ru",
		},
		Export: ExportConfig{
			OutputDir: "exports",
		},
	}
}
