// Package http provides the API server, its router and the separate metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	abacHTTP "github.com/allisson/sentinel/internal/abac/http"
	accessHTTP "github.com/allisson/sentinel/internal/access/http"
	auditHTTP "github.com/allisson/sentinel/internal/audit/http"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	authUseCase "github.com/allisson/sentinel/internal/auth/usecase"
	clearanceHTTP "github.com/allisson/sentinel/internal/clearance/http"
	"github.com/allisson/sentinel/internal/config"
	dacHTTP "github.com/allisson/sentinel/internal/dac/http"
	"github.com/allisson/sentinel/internal/httputil"
	"github.com/allisson/sentinel/internal/metrics"
	rbacHTTP "github.com/allisson/sentinel/internal/rbac/http"
	resourceHTTP "github.com/allisson/sentinel/internal/resource/http"
	rubacHTTP "github.com/allisson/sentinel/internal/rubac/http"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers groups the per-context API handlers mounted by SetupRouter.
type Handlers struct {
	Access      *accessHTTP.AccessHandler
	Session     *authHTTP.SessionHandler
	Clearance   *clearanceHTTP.ClearanceHandler
	Role        *rbacHTTP.RoleHandler
	Resource    *resourceHTTP.ResourceHandler
	Permission  *dacHTTP.PermissionHandler
	Transfer    *dacHTTP.TransferHandler
	SharingLink *dacHTTP.SharingLinkHandler
	Policy      *abacHTTP.PolicyHandler
	Context     *rubacHTTP.ContextHandler
	Audit       *auditHTTP.AuditHandler
}

// Server is the API HTTP server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// NewServer creates a new Server. The router is attached by SetupRouter.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db: db,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		checks: make(map[string]ReadinessCheck),
	}
}

// AddReadinessCheck registers a named dependency reported by /ready next to the database.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// SetupRouter builds the gin engine with every /v1 route.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	authUC authUseCase.AuthUseCase,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()

	trustedProxies, err := httputil.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		s.logger.Error("ignoring trusted proxies", slog.Any("error", err))
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(httputil.ProxyStrings(trustedProxies)); err != nil {
		s.logger.Error("failed to set trusted proxies", slog.Any("error", err))
	}

	router.Use(gin.Recovery())
	router.Use(httputil.ForwardedProtoMiddleware(trustedProxies))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Sharing-link redemption accepts anonymous callers and is throttled per IP.
	share := v1.Group("/share")
	if cfg.RateLimitShareEnabled {
		share.Use(authHTTP.IPRateLimitMiddleware(
			ctx, cfg.RateLimitShareRequestsPerSec, cfg.RateLimitShareBurst, s.logger,
		))
	}
	share.Use(authHTTP.OptionalAuthenticationMiddleware(authUC, s.logger))
	{
		share.POST("/:token/verify", handlers.SharingLink.VerifyHandler)
		share.POST("/:token/redeem", handlers.SharingLink.RedeemHandler)
	}

	authed := v1.Group("")
	authed.Use(authHTTP.AuthenticationMiddleware(authUC, s.logger))
	if cfg.RateLimitEnabled {
		authed.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	admin := authed.Group("")
	admin.Use(authHTTP.RequireAdminMiddleware(s.logger))

	authed.POST("/access/check", handlers.Access.CheckHandler)

	sessions := authed.Group("/sessions")
	{
		sessions.GET("/current", handlers.Session.GetCurrentHandler)
		sessions.POST("/revoke", handlers.Session.RevokeCurrentHandler)
	}
	admin.POST("/sessions/revoke-by-id", handlers.Session.RevokeHandler)

	clearances := authed.Group("/clearances")
	{
		clearances.PUT("/users/:user_id", handlers.Clearance.AssignHandler)
		clearances.GET("/users/:user_id", handlers.Clearance.GetHandler)
		clearances.POST("/users/:user_id/review", handlers.Clearance.ReviewHandler)
		clearances.POST("/escalations", handlers.Clearance.RequestEscalationHandler)
		clearances.POST("/escalations/:id/decide", handlers.Clearance.DecideEscalationHandler)
	}
	admin.GET("/clearances/escalations", handlers.Clearance.ListPendingEscalationsHandler)
	admin.GET("/clearances/review-due", handlers.Clearance.ReviewDueHandler)

	authed.GET("/roles", handlers.Role.ListRolesHandler)
	authed.GET("/roles/:id", handlers.Role.GetRoleHandler)
	authed.POST("/roles", handlers.Role.CreateRoleHandler)
	authed.POST("/role-assignments", handlers.Role.AssignRoleHandler)
	authed.POST("/role-assignments/revoke", handlers.Role.RevokeRoleHandler)
	authed.POST("/role-requests", handlers.Role.RequestRoleHandler)
	authed.POST("/role-requests/:id/approve", handlers.Role.ApproveRequestHandler)
	authed.POST("/role-requests/:id/reject", handlers.Role.RejectRequestHandler)
	admin.GET("/role-requests", handlers.Role.ListPendingRequestsHandler)

	resources := authed.Group("/resources")
	{
		resources.POST("", handlers.Resource.RegisterHandler)
		resources.GET("", handlers.Resource.ListOwnedHandler)
		resources.GET("/:resource_type/:resource_id", handlers.Resource.GetHandler)
		resources.PUT("/:resource_type/:resource_id/classification", handlers.Resource.ReclassifyHandler)

		resources.GET("/:resource_type/:resource_id/permissions", handlers.Permission.ListHandler)
		resources.PUT("/:resource_type/:resource_id/permissions/:user_id", handlers.Permission.GrantHandler)
		resources.DELETE("/:resource_type/:resource_id/permissions/:user_id", handlers.Permission.RevokeHandler)

		resources.POST("/:resource_type/:resource_id/transfers", handlers.Transfer.RequestHandler)

		resources.POST("/:resource_type/:resource_id/links", handlers.SharingLink.CreateHandler)
		resources.GET("/:resource_type/:resource_id/links", handlers.SharingLink.ListHandler)
	}

	transfers := authed.Group("/transfers")
	{
		transfers.GET("", handlers.Transfer.ListPendingHandler)
		transfers.POST("/:id/approve", handlers.Transfer.ApproveHandler)
		transfers.POST("/:id/reject", handlers.Transfer.RejectHandler)
	}

	authed.DELETE("/links/:id", handlers.SharingLink.RevokeHandler)

	authed.POST("/policies", handlers.Policy.CreatePolicyHandler)
	authed.PUT("/policies/:id", handlers.Policy.UpdatePolicyHandler)
	authed.DELETE("/policies/:id", handlers.Policy.DeletePolicyHandler)
	admin.GET("/policies", handlers.Policy.ListPoliciesHandler)
	admin.GET("/policies/:id", handlers.Policy.GetPolicyHandler)

	authed.POST("/context-rules", handlers.Context.CreateRuleHandler)
	authed.PUT("/context-rules/:id", handlers.Context.UpdateRuleHandler)
	authed.DELETE("/context-rules/:id", handlers.Context.DeleteRuleHandler)
	admin.GET("/context-rules", handlers.Context.ListRulesHandler)

	authed.POST("/holidays", handlers.Context.AddHolidayHandler)
	authed.GET("/holidays", handlers.Context.ListHolidaysHandler)
	authed.DELETE("/holidays/:day", handlers.Context.DeleteHolidayHandler)

	authed.POST("/devices", handlers.Context.RegisterDeviceHandler)

	users := authed.Group("/users/:user_id")
	{
		users.GET("/roles", handlers.Role.ListUserAssignmentsHandler)
		users.GET("/permissions", handlers.Role.EffectivePermissionsHandler)
		users.GET("/attributes", handlers.Policy.ListAttributesHandler)
		users.PUT("/attributes/:name", handlers.Policy.SetAttributeHandler)
		users.DELETE("/attributes/:name", handlers.Policy.DeleteAttributeHandler)
		users.GET("/devices", handlers.Context.ListDevicesHandler)
		users.PUT("/devices/:device_id/trust", handlers.Context.UpdateDeviceTrustHandler)
	}

	auditEvents := admin.Group("/audit-events")
	{
		auditEvents.GET("", handlers.Audit.ListHandler)
		auditEvents.GET("/:id", handlers.Audit.GetHandler)
		auditEvents.POST("/verify", handlers.Audit.VerifyHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database and registered dependencies are reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	components := gin.H{}

	if s.db == nil || s.db.PingContext(ctx) != nil {
		ready = false
		components["database"] = "error"
	} else {
		components["database"] = "ok"
	}

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			ready = false
			components[name] = "error"
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
