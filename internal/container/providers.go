package container

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/dispatcher"
	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/service"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/form"
	"github.com/garyjia/mark-console/internal/i18n"
	"github.com/garyjia/mark-console/internal/infrastructure/cache"
	"github.com/garyjia/mark-console/internal/infrastructure/export"
	"github.com/garyjia/mark-console/internal/infrastructure/persistence/repository"
	"github.com/garyjia/mark-console/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/mark-console/internal/infrastructure/storage"
	"github.com/garyjia/mark-console/migrations"
	"github.com/garyjia/mark-console/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	Conn           *database.DB
	TransactionMgr *sqlite.DB
}

// CatalogBundle holds the action catalog and its renderer.
type CatalogBundle struct {
	Catalog  *action.Catalog
	Renderer *form.Renderer
}

// StorageBundle holds export components.
type StorageBundle struct {
	FileStorage port.FileStorage
	Exporter    *export.JournalExporter
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	conn, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(conn, logger).RunMigrations(MigrationSource(cfg.MigrationsDir)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		Conn:           conn,
		TransactionMgr: sqlite.NewDB(conn.DB, logger),
	}, nil
}

// MigrationSource returns the directory's migrations, or the embedded ones when dir is empty.
func MigrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

// ProvideRepositories creates all repositories over the transaction-aware database.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Marks:         repository.NewMarkRepository(db, logger),
		ActionRecords: repository.NewActionRecordRepository(db, logger),
	}, nil
}

// ProvideCatalog builds the catalog from the built-in definitions, replacing
// option sets from the configured document when there is one.
func ProvideCatalog(cfg *CatalogConfig, logger *zap.Logger) (*CatalogBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is required")
	}

	sets := action.DefaultOptionSets()
	if cfg.OptionsPath != "" {
		overrides, err := action.LoadOptionSets(cfg.OptionsPath)
		if err != nil {
			return nil, err
		}
		sets = action.MergeOptionSets(sets, overrides)
		logger.Info("Option sets loaded", zap.String("path", cfg.OptionsPath), zap.Int("count", len(overrides)))
	}

	catalog, err := action.NewCatalog(action.DefaultDefinitions(), action.DefaultFields(), sets)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	return &CatalogBundle{
		Catalog:  catalog,
		Renderer: form.NewRenderer(catalog, form.WithSuggestionLimit(cfg.SuggestionLimit)),
	}, nil
}

// ProvideLabels loads the shipped bundles plus any in the configured directory.
func ProvideLabels(cfg *I18nConfig) (*i18n.Bundles, error) {
	if cfg == nil {
		return nil, fmt.Errorf("i18n config is required")
	}
	bundles, err := i18n.Load(cfg.BundlePath, cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to load label bundles: %w", err)
	}
	if !bundles.Has(cfg.DefaultLanguage) {
		return nil, fmt.Errorf("no label bundle for default language %q", cfg.DefaultLanguage)
	}
	return bundles, nil
}

// ProvideStorage creates the export directory storage and workbook writer.
func ProvideStorage(cfg *ExportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	return &StorageBundle{
		FileStorage: storage.NewLocalFileStorage(cfg.OutputDir, logger),
		Exporter:    export.NewJournalExporter(logger),
	}, nil
}

// ProvideSessionStore creates the idle-expiring session store.
func ProvideSessionStore(cfg *SessionConfig, logger *zap.Logger) *cache.SessionStore {
	return cache.NewSessionStore(cfg.IdleTimeout, cfg.CleanupInterval, logger)
}

// ProvideDispatcher creates the completion event dispatcher.
func ProvideDispatcher(logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(dispatcher.WithLogger(logger.Sugar()))
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Catalog    *CatalogBundle
	Labels     port.LabelLookup
	Sessions   port.SessionStore
	Storage    *StorageBundle
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates the application services and subscribes the journal
// to completion events.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil || deps.Catalog == nil || deps.Storage == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("repositories, catalog, storage and dispatcher are required")
	}

	journal := service.NewJournalService(
		deps.Repos.ActionRecords,
		deps.TxManager,
		deps.Storage.Exporter,
		deps.Storage.FileStorage,
		deps.Labels,
		deps.Logger.Sugar(),
	)
	journal.Subscribe(deps.Dispatcher)

	console := service.NewConsoleService(
		deps.Catalog.Catalog,
		deps.Catalog.Renderer,
		deps.Sessions,
		deps.Repos.Marks,
		deps.Labels,
		deps.Dispatcher,
		deps.Logger,
	)

	return &ServiceBundle{
		Console: console,
		Journal: journal,
	}, nil
}
