// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/awnumar/memguard"
	"gopkg.in/natefinch/lumberjack.v2"

	authUseCase "github.com/allisson/vault/internal/auth/usecase"
	"github.com/allisson/vault/internal/config"
	cryptoService "github.com/allisson/vault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/vault/internal/crypto/usecase"
	"github.com/allisson/vault/internal/database"
	"github.com/allisson/vault/internal/filestore"
	"github.com/allisson/vault/internal/http"
	"github.com/allisson/vault/internal/metrics"
	secretsHTTP "github.com/allisson/vault/internal/secrets/http"
	secretsUseCase "github.com/allisson/vault/internal/secrets/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger    *slog.Logger
	logCloser io.Closer
	store     *filestore.Store
	db        *sql.DB

	// Managers
	txManager database.TxManager

	// Crypto
	aeadManager      cryptoService.AEADManager
	keyDeriver       cryptoService.KeyDeriver
	cryptoEngine     cryptoService.CryptoEngine
	dekService       cryptoService.DekService
	kmsService       cryptoService.KMSService
	kdfParamsRepo    cryptoUseCase.KDFParamsRepository
	masterKeyUseCase cryptoUseCase.MasterKeyUseCase

	// Policies
	policyUseCase   authUseCase.PolicyUseCase
	defaultIdentity string

	// Secrets
	secretRepository secretsUseCase.SecretRepository
	secretUseCase    secretsUseCase.SecretUseCase
	secretHandler    *secretsHTTP.SecretHandler

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	storeInit            sync.Once
	dbInit               sync.Once
	txManagerInit        sync.Once
	aeadManagerInit      sync.Once
	keyDeriverInit       sync.Once
	cryptoEngineInit     sync.Once
	dekServiceInit       sync.Once
	kmsServiceInit       sync.Once
	kdfParamsRepoInit    sync.Once
	masterKeyUseCaseInit sync.Once
	policyUseCaseInit    sync.Once
	defaultIdentityInit  sync.Once
	secretRepositoryInit sync.Once
	secretUseCaseInit    sync.Once
	secretHandlerInit    sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Store returns the flat file store used by the file storage driver.
func (c *Container) Store() *filestore.Store {
	c.storeInit.Do(func() {
		c.store = filestore.New(c.config.StoreFile, c.Logger())
	})
	return c.store
}

// DB returns the SQLite database connection with the schema migrated.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// The master key must not outlive the process: destroy it, then wipe every
	// memguard allocation.
	if c.masterKeyUseCase != nil {
		c.masterKeyUseCase.Seal()
		memguard.Purge()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.logCloser != nil {
		if err := c.logCloser.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("log file close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
// Output goes to stdout, or to a size-rotated file when LogFile is set.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if c.config.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   c.config.LogFile,
			MaxSize:    c.config.LogFileMaxSizeMB,
			MaxBackups: c.config.LogFileMaxBackups,
			MaxAge:     c.config.LogFileMaxAgeDays,
			Compress:   true,
		}
		c.logCloser = rotating
		out = rotating
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB opens the SQLite database and applies pending migrations.
func (c *Container) initDB() (*sql.DB, error) {
	dbConfig, err := database.SQLiteConfig(c.config.SQLitePath)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := database.NewSQLiteMigrate(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// m.Close would close db as well; the container owns db.
	if err := database.MigrateUp(m); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initHTTPServer creates the API server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	masterKeys, err := c.MasterKeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key use case for http server: %w", err)
	}

	secretHandler, err := c.SecretHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret handler for http server: %w", err)
	}

	policies, err := c.PolicyUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get policy use case for http server: %w", err)
	}

	defaultIdentity, err := c.DefaultIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default identity for http server: %w", err)
	}

	var metricsProvider *metrics.Provider
	if c.config.MetricsEnabled {
		metricsProvider, err = c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
	}

	server := http.NewServer(masterKeys, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(ctx, c.config, secretHandler, policies, metricsProvider, defaultIdentity)

	if c.config.TLSCertFile != "" {
		tlsConfig, err := http.NewTLSConfig(c.config.TLSCertFile, c.config.TLSKeyFile, c.config.TLSClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to configure tls: %w", err)
		}
		server.ConfigureTLS(tlsConfig)
	}

	return server, nil
}
