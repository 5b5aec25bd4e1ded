package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/dispatcher"
	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/service"
	"github.com/garyjia/mark-console/internal/domain/action"
	"github.com/garyjia/mark-console/internal/domain/event"
	"github.com/garyjia/mark-console/internal/i18n"
	"github.com/garyjia/mark-console/internal/infrastructure/cache"
	"github.com/garyjia/mark-console/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/mark-console/pkg/database"
)

// Container owns every component of the console. Start builds them in
// dependency order; Close tears them down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	conn         *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	// Domain
	catalog *CatalogBundle
	labels  *i18n.Bundles

	// Infrastructure - Storage and sessions
	storage  *StorageBundle
	sessions *cache.SessionStore

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories.
type RepositoryBundle struct {
	Marks         port.MarkRepository
	ActionRecords port.ActionRecordRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Console service.ConsoleService
	Journal service.JournalService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations and repositories
// 2. Catalog and label bundles
// 3. Export storage and session store
// 4. Event dispatcher
// 5. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initCatalog(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	c.logger.Info("Catalog initialized", zap.Int("actions", len(c.catalog.Catalog.Actions())))

	if err := c.initStorage(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.logger.Info("Storage initialized")

	c.dispatcher = ProvideDispatcher(c.logger)

	if err := c.initServices(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order. Open sessions are
// closed without emitting anything.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	var errs []error

	if c.sessions != nil {
		n := c.sessions.Count()
		c.sessions.Flush()
		c.logger.Info("Sessions closed", zap.Int("count", n))
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.conn == nil:
		set("database", ComponentHealth{Message: "not initialized"})
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		version, err := c.conn.SchemaVersion(ctx)
		cancel()
		if err != nil {
			set("database", ComponentHealth{Message: err.Error()})
		} else {
			set("database", ComponentHealth{Healthy: true, Message: fmt.Sprintf("schema version: %d", version)})
		}
	}

	if c.db != nil {
		stats := c.db.Stats()
		set("transactions", ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("committed: %d, rolled back: %d", stats.Committed, stats.RolledBack),
		})
	}

	if c.dispatcher != nil {
		set("dispatcher", ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("journal handlers: %d", len(c.dispatcher.ListHandlers(event.TypeActionCompleted))),
		})
	} else {
		set("dispatcher", ComponentHealth{Message: "not initialized"})
	}

	if c.sessions != nil {
		set("sessions", ComponentHealth{Healthy: true, Message: fmt.Sprintf("open: %d", c.sessions.Count())})
	} else {
		set("sessions", ComponentHealth{Message: "not initialized"})
	}

	return status
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.conn = bundle.Conn
	c.db = bundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		c.closeDatabase()
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initCatalog() error {
	catalog, err := ProvideCatalog(&c.config.Catalog, c.logger)
	if err != nil {
		return err
	}
	labels, err := ProvideLabels(&c.config.I18n)
	if err != nil {
		return err
	}
	c.catalog = catalog
	c.labels = labels
	return nil
}

func (c *Container) initStorage() error {
	bundle, err := ProvideStorage(&c.config.Export, c.logger)
	if err != nil {
		return err
	}
	c.storage = bundle
	c.sessions = ProvideSessionStore(&c.config.Session, c.logger)
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		TxManager:  c.db,
		Catalog:    c.catalog,
		Labels:     c.labels,
		Sessions:   c.sessions,
		Storage:    c.storage,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *Container) closeDatabase() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.conn = nil
	return err
}

// Catalog returns the action catalog.
func (c *Container) Catalog() *action.Catalog {
	if c.catalog == nil {
		return nil
	}
	return c.catalog.Catalog
}

// Labels returns the label bundles.
func (c *Container) Labels() *i18n.Bundles {
	return c.labels
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}
