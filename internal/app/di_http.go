package app

import (
	"context"
	"fmt"

	abacHTTP "github.com/allisson/sentinel/internal/abac/http"
	accessHTTP "github.com/allisson/sentinel/internal/access/http"
	auditHTTP "github.com/allisson/sentinel/internal/audit/http"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	clearanceHTTP "github.com/allisson/sentinel/internal/clearance/http"
	dacHTTP "github.com/allisson/sentinel/internal/dac/http"
	"github.com/allisson/sentinel/internal/http"
	rbacHTTP "github.com/allisson/sentinel/internal/rbac/http"
	resourceHTTP "github.com/allisson/sentinel/internal/resource/http"
	rubacHTTP "github.com/allisson/sentinel/internal/rubac/http"
)

// HTTPServer returns the API server with every route mounted.
func (c *Container) HTTPServer() (*http.Server, error) {
	err := c.resolve("httpServer", &c.httpServerInit, func() (err error) {
		c.httpServer, err = c.initHTTPServer()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the server exposing /metrics on its own port.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.resolve("metricsServer", &c.metricsServerInit, func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	handlers, err := c.initHandlers()
	if err != nil {
		return nil, err
	}
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	redisClient := c.RedisClient()
	server.AddReadinessCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	server.SetupRouter(c.ctx, c.config, *handlers, authUC, provider)

	return server, nil
}

// initHandlers builds one handler per bounded context.
func (c *Container) initHandlers() (*http.Handlers, error) {
	logger := c.Logger()

	accessUC, err := c.AccessUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get access use case for http server: %w", err)
	}
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}
	clearanceUC, err := c.ClearanceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get clearance use case for http server: %w", err)
	}
	rbacUC, err := c.RBACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rbac use case for http server: %w", err)
	}
	resourceUC, err := c.ResourceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resource use case for http server: %w", err)
	}
	permissionUC, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for http server: %w", err)
	}
	transferUC, err := c.TransferUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer use case for http server: %w", err)
	}
	sharingLinkUC, err := c.SharingLinkUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get sharing link use case for http server: %w", err)
	}
	abacUC, err := c.ABACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get abac use case for http server: %w", err)
	}
	rubacUC, err := c.RuBACUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rubac use case for http server: %w", err)
	}
	auditUC, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for http server: %w", err)
	}

	return &http.Handlers{
		Access:      accessHTTP.NewAccessHandler(accessUC, logger),
		Session:     authHTTP.NewSessionHandler(authUC, logger),
		Clearance:   clearanceHTTP.NewClearanceHandler(clearanceUC, logger),
		Role:        rbacHTTP.NewRoleHandler(rbacUC, logger),
		Resource:    resourceHTTP.NewResourceHandler(resourceUC, logger),
		Permission:  dacHTTP.NewPermissionHandler(permissionUC, logger),
		Transfer:    dacHTTP.NewTransferHandler(transferUC, logger),
		SharingLink: dacHTTP.NewSharingLinkHandler(sharingLinkUC, logger),
		Policy:      abacHTTP.NewPolicyHandler(abacUC, logger),
		Context:     rubacHTTP.NewContextHandler(rubacUC, logger),
		Audit:       auditHTTP.NewAuditHandler(auditUC, logger),
	}, nil
}
