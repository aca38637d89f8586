// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	abacUseCase "github.com/allisson/sentinel/internal/abac/usecase"
	accessUseCase "github.com/allisson/sentinel/internal/access/usecase"
	auditService "github.com/allisson/sentinel/internal/audit/service"
	auditUseCase "github.com/allisson/sentinel/internal/audit/usecase"
	authService "github.com/allisson/sentinel/internal/auth/service"
	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
	clearanceUseCase "github.com/allisson/sentinel/internal/clearance/usecase"
	"github.com/allisson/sentinel/internal/clock"
	"github.com/allisson/sentinel/internal/config"
	dacUseCase "github.com/allisson/sentinel/internal/dac/usecase"
	"github.com/allisson/sentinel/internal/database"
	"github.com/allisson/sentinel/internal/http"
	macUseCase "github.com/allisson/sentinel/internal/mac/usecase"
	"github.com/allisson/sentinel/internal/metrics"
	"github.com/allisson/sentinel/internal/outbox/publisher"
	outboxUseCase "github.com/allisson/sentinel/internal/outbox/usecase"
	rbacUseCase "github.com/allisson/sentinel/internal/rbac/usecase"
	resourceUseCase "github.com/allisson/sentinel/internal/resource/usecase"
	rubacUseCase "github.com/allisson/sentinel/internal/rubac/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Base context for background helpers owned by the container (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	redisClient     *redis.Client
	clock           clock.Clock
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Repositories
	repositories *repositories

	// Services
	chainHasher  auditService.ChainHasher
	tokenService authService.TokenService

	// Use Cases
	auditUseCase       auditUseCase.AuditUseCase
	authUseCase        authUseCase.AuthUseCase
	resourceUseCase    resourceUseCase.ResourceUseCase
	macUseCase         macUseCase.MACUseCase
	clearanceUseCase   clearanceUseCase.ClearanceUseCase
	rbacUseCase        rbacUseCase.RBACUseCase
	permissionUseCase  dacUseCase.PermissionUseCase
	transferUseCase    dacUseCase.TransferUseCase
	sharingLinkUseCase dacUseCase.SharingLinkUseCase
	abacUseCase        abacUseCase.ABACUseCase
	rubacUseCase       rubacUseCase.RuBACUseCase
	accessUseCase      accessUseCase.AccessUseCase
	outboxUseCase      *outboxUseCase.OutboxUseCase

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer
	publisher     *publisher.RabbitMQPublisher

	// Initialization flags and mutex for thread-safety
	mu                     sync.Mutex
	loggerInit             sync.Once
	clockInit              sync.Once
	dbInit                 sync.Once
	redisInit              sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	repositoriesInit       sync.Once
	chainHasherInit        sync.Once
	tokenServiceInit       sync.Once
	auditUseCaseInit       sync.Once
	authUseCaseInit        sync.Once
	resourceUseCaseInit    sync.Once
	macUseCaseInit         sync.Once
	clearanceUseCaseInit   sync.Once
	rbacUseCaseInit        sync.Once
	permissionUseCaseInit  sync.Once
	transferUseCaseInit    sync.Once
	sharingLinkUseCaseInit sync.Once
	abacUseCaseInit        sync.Once
	rubacUseCaseInit       sync.Once
	accessUseCaseInit      sync.Once
	outboxUseCaseInit      sync.Once
	publisherInit          sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// resolve runs init exactly once and remembers its error under name, so later calls keep
// failing the same way.
func (c *Container) resolve(name string, once *sync.Once, init func() error) error {
	once.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock shared by every use case.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.Real()
	})
	return c.clock
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	err := c.resolve("db", &c.dbInit, func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.db, nil
}

// RedisClient returns the client of the session revocation store.
func (c *Container) RedisClient() *redis.Client {
	c.redisInit.Do(func() {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
	})
	return c.redisClient
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.resolve("txManager", &c.txManagerInit, func() (err error) {
		c.txManager, err = c.initTxManager()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider exporting to Prometheus.
// Returns nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.resolve("metricsProvider", &c.metricsProviderInit, func() (err error) {
		if !c.config.MetricsEnabled {
			return nil
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the domain counters. A no-op implementation is returned when
// metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.resolve("businessMetrics", &c.businessMetricsInit, func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
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

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("publisher close: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
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

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
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
