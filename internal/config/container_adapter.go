package config

import (
	"github.com/garyjia/mark-console/internal/container"
)

// ToContainerConfig converts the loaded configuration to the container's view of it
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Session: container.SessionConfig{
			IdleTimeout:     c.Session.IdleTimeout,
			CleanupInterval: c.Session.CleanupInterval,
		},
		Catalog: container.CatalogConfig{
			OptionsPath:     c.Catalog.OptionsPath,
			SuggestionLimit: c.Catalog.SuggestionLimit,
		},
		I18n: container.I18nConfig{
			DefaultLanguage: c.I18n.DefaultLanguage,
			BundlePath:      c.I18n.BundlePath,
		},
		Export: container.ExportConfig{
			OutputDir: c.Export.OutputDir,
		},
	}
}
